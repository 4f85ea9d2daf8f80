package printer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Meet0105/repoza-sub001/internal/core/styles"
	"github.com/Meet0105/repoza-sub001/pkg/tuitest"
)

func TestPrinter_Lines(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.Successf("saved %d", 2)
	p.Warnf("careful")
	p.Errorf("failed: %s", "boom")
	p.Infof("note")
	p.Printf("  plain")

	lines := tuitest.StripANSI(buf.String())
	assert.Equal(t,
		styles.IconNotifySuccess+" saved 2\n"+
			styles.IconNotifyWarning+" careful\n"+
			styles.IconNotifyError+" failed: boom\n"+
			styles.IconNotifyInfo+" note\n"+
			"  plain\n",
		lines,
	)
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	ctx := NewContext(context.Background(), p)
	assert.Same(t, p, Ctx(ctx))

	assert.NotNil(t, Ctx(context.Background()))
}
