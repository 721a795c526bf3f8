package printer

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrinterFromConfig(t *testing.T) {
	p, err := NewPrinterFromConfig("", "", "")
	require.NoError(t, err)
	assert.Equal(t, "none", p.Kind())

	_, err = NewPrinterFromConfig("usb", "", "")
	assert.Error(t, err)

	_, err = NewPrinterFromConfig("network", "", "")
	assert.Error(t, err)

	_, err = NewPrinterFromConfig("bluetooth", "", "")
	assert.Error(t, err)

	p, err = NewPrinterFromConfig("network", "", "127.0.0.1:9100")
	require.NoError(t, err)
	assert.Equal(t, "network", p.Kind())
}

func TestNetworkPrinter_SendsJob(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	p := NewNetworkPrinter(ln.Addr().String())
	require.NoError(t, p.Print(context.Background(), []byte("hello")))

	select {
	case data := <-received:
		assert.Equal(t, []byte("hello"), data)
	case <-time.After(2 * time.Second):
		t.Fatal("printer never received the job")
	}
}

func TestNetworkPrinter_UnreachableIsNotConnected(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	p := NewNetworkPrinter(addr)
	assert.False(t, p.IsConnected(context.Background()))
	assert.Error(t, p.Print(context.Background(), []byte("x")))
}

func TestUSBPrinter_WritesDeviceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lp0")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	p := NewUSBPrinter(path)
	assert.True(t, p.IsConnected(context.Background()))
	require.NoError(t, p.Print(context.Background(), []byte{ESC, '@'}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{ESC, '@'}, data)
}

func TestDocument_KeyValueFillsWidth(t *testing.T) {
	d := NewDocument(32)
	d.Reset()
	start := len(d.Bytes())

	d.KeyValue("Total", "12 500")

	line := d.Bytes()[start:]
	assert.Len(t, line, 33) // 32 columns + LF
	assert.True(t, bytes.HasPrefix(line, []byte("Total")))
	assert.True(t, bytes.HasSuffix(line, []byte("12 500\n")))
}

func TestDocument_ItemLineTruncatesLongNames(t *testing.T) {
	d := NewDocument(20)
	start := len(d.Bytes())

	d.ItemLine(2, "Shampooing kératine extra longue", "1 500", "3 000")

	lines := bytes.Split(bytes.TrimSuffix(d.Bytes()[start:], []byte{LF}), []byte{LF})
	require.Len(t, lines, 2)
	assert.Equal(t, "Shampooing keratine ", string(lines[0]))
	assert.Len(t, lines[1], 20)
	assert.True(t, bytes.HasSuffix(lines[1], []byte("3 000")))
}

func TestASCII(t *testing.T) {
	assert.Equal(t, "Creme coiffante", ASCII("Crème coiffante"))
	assert.Equal(t, "Tresses ? la main", ASCII("Tresses ✂ la main"))
}

func TestDocument_CutAndInit(t *testing.T) {
	d := NewDocument(0)
	assert.Equal(t, 32, d.Width())
	assert.Equal(t, []byte{ESC, '@'}, d.Bytes())

	d.Cut()
	assert.True(t, bytes.HasSuffix(d.Bytes(), []byte{GS, 'V', 0x00}))
}
