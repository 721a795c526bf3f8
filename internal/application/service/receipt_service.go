package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/internal/domain/enum"
	"github.com/sangkips/salonpos-api/internal/domain/repository"
	infraRepo "github.com/sangkips/salonpos-api/internal/infrastructure/repository"
	"github.com/sangkips/salonpos-api/pkg/apperror"
	"github.com/sangkips/salonpos-api/pkg/email"
	"github.com/sangkips/salonpos-api/pkg/printer"
)

// ErrPrintFailed wraps printer transport errors. The receipt is still returned.
var ErrPrintFailed = errors.New("failed to print receipt")

// ReceiptService composes receipts from sales and sends them to the printer or by e-mail
type ReceiptService struct {
	printer      printer.Printer
	charWidth    int
	sales        *SaleService
	salonRepo    repository.SalonRepository
	customerRepo repository.CustomerRepository
	mailer       *email.EmailService
	log          *zap.Logger
}

// NewReceiptService creates a new receipt service
func NewReceiptService(
	p printer.Printer,
	charWidth int,
	sales *SaleService,
	salonRepo repository.SalonRepository,
	customerRepo repository.CustomerRepository,
	mailer *email.EmailService,
	log *zap.Logger,
) *ReceiptService {
	return &ReceiptService{
		printer:      p,
		charWidth:    charWidth,
		sales:        sales,
		salonRepo:    salonRepo,
		customerRepo: customerRepo,
		mailer:       mailer,
		log:          log,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *ReceiptService) GetStatus(ctx context.Context) *PrinterStatus {
	kind := s.printer.Kind()
	return &PrinterStatus{
		Configured: kind != "none",
		Connected:  s.printer.IsConnected(ctx),
		Type:       kind,
	}
}

// TestPrint sends a sample receipt to the printer and returns it.
func (s *ReceiptService) TestPrint(ctx context.Context) (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header:    entity.ReceiptHeader{SalonName: "TEST IMPRIMANTE"},
		InvoiceNo: "TEST-001",
		Date:      time.Now().Format("02/01/2006 15:04"),
		Cashier:   "Système",
		Currency:  "XOF",
		Items: []entity.ReceiptItem{
			{Name: "Coupe femme", Quantity: 1, UnitPrice: decimal.NewFromInt(5000), Total: decimal.NewFromInt(5000)},
			{Name: "Huile de coco", Quantity: 2, UnitPrice: decimal.NewFromInt(2500), Total: decimal.NewFromInt(5000)},
		},
		Subtotal:   decimal.NewFromInt(10000),
		GrandTotal: decimal.NewFromInt(10000),
		Payments:   []entity.ReceiptPayment{{Method: paymentLabel(enum.PaymentMethodCash), Amount: decimal.NewFromInt(10000)}},
		TotalPaid:  decimal.NewFromInt(10000),
	}

	if err := s.printer.Print(ctx, FormatReceipt(receipt, s.charWidth)); err != nil {
		return receipt, errors.Join(ErrPrintFailed, err)
	}
	return receipt, nil
}

// BuildReceipt composes the receipt of a sale
func (s *ReceiptService) BuildReceipt(ctx context.Context, saleID uuid.UUID) (*entity.Receipt, *entity.Sale, error) {
	sale, err := s.sales.GetSale(ctx, saleID)
	if err != nil {
		return nil, nil, err
	}

	var salon *entity.Salon
	if salonID, ok := infraRepo.GetSalonID(ctx); ok {
		if salon, err = s.salonRepo.GetByID(ctx, salonID); err != nil {
			return nil, nil, err
		}
	}
	if salon == nil {
		salon = &entity.Salon{Settings: entity.DefaultSalonSettings()}
	}

	return composeReceipt(sale, salon), sale, nil
}

func composeReceipt(sale *entity.Sale, salon *entity.Salon) *entity.Receipt {
	r := &entity.Receipt{
		Header: entity.ReceiptHeader{
			SalonName: salon.Name,
			TaxID:     salon.Settings.TaxID,
		},
		InvoiceNo:      sale.InvoiceNo,
		Date:           sale.SaleDate.In(salonLocation(salon)).Format("02/01/2006 15:04"),
		Cashier:        sale.User.FullName(),
		Currency:       salon.Settings.Currency,
		Subtotal:       sale.Subtotal,
		GlobalDiscount: sale.GlobalDiscountAmount,
		PointsDiscount: sale.PointsDiscountAmount,
		GrandTotal:     sale.GrandTotal,
		TotalPaid:      sale.TotalPaid,
		ChangeOwed:     sale.ChangeOwed,
		PointsEarned:   sale.PointsEarned,
		Footer:         salon.Settings.ReceiptFooter,
		Cancelled:      sale.IsCancelled(),
	}
	if salon.Address != nil {
		r.Header.Address = *salon.Address
	}
	if salon.Phone != nil {
		r.Header.Phone = *salon.Phone
	}
	if sale.Customer != nil {
		r.Customer = sale.Customer.Name
		balance := sale.Customer.LoyaltyPoints
		r.PointsBalance = &balance
	}

	for _, l := range sale.Lines {
		r.Items = append(r.Items, entity.ReceiptItem{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
			Total:     l.Total,
		})
	}
	for _, p := range sale.Payments {
		payment := entity.ReceiptPayment{Method: paymentLabel(p.Method), Amount: p.Amount}
		if p.Reference != nil {
			payment.Reference = *p.Reference
		}
		r.Payments = append(r.Payments, payment)
	}
	return r
}

// PrintSaleReceipt prints the receipt of a sale. On printer failure the
// receipt is returned with an error wrapping ErrPrintFailed.
func (s *ReceiptService) PrintSaleReceipt(ctx context.Context, saleID uuid.UUID) (*entity.Receipt, error) {
	receipt, _, err := s.BuildReceipt(ctx, saleID)
	if err != nil {
		return nil, err
	}

	if err := s.printer.Print(ctx, FormatReceipt(receipt, s.charWidth)); err != nil {
		s.log.Warn("printer error", zap.String("sale_id", saleID.String()), zap.Error(err))
		return receipt, errors.Join(ErrPrintFailed, err)
	}
	return receipt, nil
}

// EmailSaleReceipt mails the receipt to `to`, or to the sale's customer when empty
func (s *ReceiptService) EmailSaleReceipt(ctx context.Context, saleID uuid.UUID, to string) (string, error) {
	if !s.mailer.IsConfigured() {
		return "", apperror.NewAppError(503, "E-mail is not configured")
	}

	receipt, sale, err := s.BuildReceipt(ctx, saleID)
	if err != nil {
		return "", err
	}

	to = strings.TrimSpace(to)
	if to == "" && sale.Customer != nil && sale.Customer.Email != nil {
		to = *sale.Customer.Email
	}
	if to == "" {
		return "", apperror.NewBusinessRuleError("No e-mail address for this receipt", fieldError("email", "is required when the customer has no e-mail"))
	}

	if err := s.mailer.SendReceipt(to, receiptEmail(receipt)); err != nil {
		s.log.Error("receipt e-mail failed", zap.String("sale_id", saleID.String()), zap.Error(err))
		return "", apperror.NewAppError(502, "Failed to send receipt e-mail")
	}

	s.log.Info("receipt e-mailed", zap.String("sale_id", saleID.String()))
	return to, nil
}

func receiptEmail(r *entity.Receipt) email.ReceiptEmail {
	m := email.ReceiptEmail{
		SalonName:     r.Header.SalonName,
		SalonAddress:  r.Header.Address,
		SalonPhone:    r.Header.Phone,
		InvoiceNo:     r.InvoiceNo,
		Date:          r.Date,
		CustomerName:  r.Customer,
		Cashier:       r.Cashier,
		Subtotal:      FormatMoney(r.Subtotal, r.Currency),
		GrandTotal:    FormatMoney(r.GrandTotal, r.Currency),
		PointsEarned:  r.PointsEarned,
		PointsBalance: r.PointsBalance,
		Footer:        r.Footer,
		Cancelled:     r.Cancelled,
	}
	if r.GlobalDiscount.IsPositive() {
		m.GlobalDiscount = FormatMoney(r.GlobalDiscount, r.Currency)
	}
	if r.PointsDiscount.IsPositive() {
		m.PointsDiscount = FormatMoney(r.PointsDiscount, r.Currency)
	}
	if r.ChangeOwed.IsPositive() {
		m.ChangeOwed = FormatMoney(r.ChangeOwed, r.Currency)
	}
	for _, it := range r.Items {
		line := email.ReceiptLine{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: FormatMoney(it.UnitPrice, r.Currency),
			Total:     FormatMoney(it.Total, r.Currency),
		}
		if !it.Discount.IsZero() {
			line.Discount = FormatMoney(it.Discount, r.Currency)
		}
		m.Lines = append(m.Lines, line)
	}
	for _, p := range r.Payments {
		m.Payments = append(m.Payments, email.ReceiptPayment{
			Method:    p.Method,
			Amount:    FormatMoney(p.Amount, r.Currency),
			Reference: p.Reference,
		})
	}
	return m
}

func paymentLabel(m enum.PaymentMethod) string {
	switch m {
	case enum.PaymentMethodCash:
		return "Espèces"
	case enum.PaymentMethodOrangeMoney:
		return "Orange Money"
	case enum.PaymentMethodWave:
		return "Wave"
	case enum.PaymentMethodCard:
		return "Carte"
	default:
		return m.String()
	}
}

// zero-decimal currencies used in the region
var wholeCurrencies = map[string]bool{"XOF": true, "XAF": true, "GNF": true}

// FormatMoney renders an amount with space-grouped thousands, e.g. "12 500 XOF"
func FormatMoney(amount decimal.Decimal, currency string) string {
	places := int32(2)
	if currency == "" || wholeCurrencies[currency] {
		places = 0
	}

	s := amount.Abs().StringFixed(places)
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	if amount.IsNegative() {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(c)
	}
	b.WriteString(frac)
	if currency != "" {
		b.WriteString(" " + currency)
	}
	return b.String()
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, charWidth int) []byte {
	doc := printer.NewDocument(charWidth)
	money := func(d decimal.Decimal) string { return FormatMoney(d, "") }

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.SalonName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}
	if r.Header.TaxID != "" {
		doc.TextF("NINEA: %s", r.Header.TaxID)
	}
	if r.Cancelled {
		doc.SetBold(true).Text("*** VENTE ANNULEE ***").SetBold(false)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')

	doc.KeyValue("Facture:", r.InvoiceNo).
		KeyValue("Date:", r.Date)
	if r.Cashier != "" {
		doc.KeyValue("Caissier:", r.Cashier)
	}
	if r.Customer != "" {
		doc.KeyValue("Client:", r.Customer)
	}

	doc.Separator('-')

	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, money(item.UnitPrice), money(item.Total))
		if !item.Discount.IsZero() {
			doc.TextF("  remise -%s", money(item.Discount))
		}
	}

	doc.Separator('-')

	doc.KeyValue("Sous-total:", money(r.Subtotal))
	if r.GlobalDiscount.IsPositive() {
		doc.KeyValue("Remise:", "-"+money(r.GlobalDiscount))
	}
	if r.PointsDiscount.IsPositive() {
		doc.KeyValue("Points fidelite:", "-"+money(r.PointsDiscount))
	}
	total := money(r.GrandTotal)
	if r.Currency != "" {
		total += " " + r.Currency
	}
	doc.SetBold(true).
		KeyValue("TOTAL:", total).
		SetBold(false)

	for _, p := range r.Payments {
		doc.KeyValue(p.Method+":", money(p.Amount))
		if p.Reference != "" {
			doc.Text("  Ref " + p.Reference)
		}
	}
	if r.ChangeOwed.IsPositive() {
		doc.KeyValue("Rendu:", money(r.ChangeOwed))
	}

	if r.PointsEarned > 0 || r.PointsBalance != nil {
		doc.Separator('-')
		if r.PointsEarned > 0 {
			doc.KeyValue("Points gagnes:", decimal.NewFromInt(r.PointsEarned).String())
		}
		if r.PointsBalance != nil {
			doc.KeyValue("Solde points:", decimal.NewFromInt(*r.PointsBalance).String())
		}
	}

	doc.Separator('-')

	if r.Footer != "" {
		doc.SetAlign(printer.AlignCenter).
			LineFeed().
			Text(r.Footer).
			LineFeed().
			SetAlign(printer.AlignLeft)
	}

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
