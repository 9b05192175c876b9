package main

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/decker502/beatpreview/pkg/components"
	"github.com/decker502/beatpreview/pkg/types"
)

func TestLinkGlyph(t *testing.T) {
	tests := []struct {
		angle float64
		want  rune
	}{
		{0, '↓'},
		{180, '↑'},
		{-180, '↑'},
		{90, '→'},
		{-90, '←'},
		{45, '↘'},
		{135, '↗'},
		{-45, '↙'},
		{-135, '↖'},
		{10, '↓'},
	}
	for _, tt := range tests {
		if got := linkGlyph(tt.angle); got != tt.want {
			t.Errorf("linkGlyph(%v) = %q, want %q", tt.angle, got, tt.want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		progress float64
		width    int
		want     string
	}{
		{0, 6, "[    ]"},
		{0.5, 6, "[==  ]"},
		{1, 6, "[====]"},
		{2, 6, "[====]"},
		{0.5, 2, ""},
	}
	for _, tt := range tests {
		if got := progressBar(tt.progress, tt.width); got != tt.want {
			t.Errorf("progressBar(%v, %d) = %q, want %q", tt.progress, tt.width, got, tt.want)
		}
	}
}

func TestProject(t *testing.T) {
	v := newView("test", 80, 27)

	// 玩家平面中心落在绘制区域内
	col, row, ok := v.project(0, 0.5, 0, 0)
	if !ok {
		t.Fatal("center of the player plane should be visible")
	}
	if col != 40 {
		t.Errorf("col = %d, want 40", col)
	}
	if row < 0 || row >= v.fieldHeight() {
		t.Errorf("row %d outside field", row)
	}

	// 越远越靠近画面中心
	nearCol, _, _ := v.project(1, 0.5, 0, 0)
	farCol, _, _ := v.project(1, 0.5, 20, 0)
	if farCol >= nearCol {
		t.Errorf("far link should be closer to center: near %d far %d", nearCol, farCol)
	}

	// 相机背后不可见
	if _, _, ok := v.project(0, 0, -5, 0); ok {
		t.Error("point behind the camera should be culled")
	}
}

func TestMaterialStyle(t *testing.T) {
	if materialStyle(components.Material{Kind: components.MaterialComplex, Color: types.ColorRed}) != styleRed {
		t.Error("complex red")
	}
	if materialStyle(components.Material{Kind: components.MaterialSimple, Color: types.ColorBlue}) != styleSimpleBlue {
		t.Error("simple blue")
	}
}

// fakeEvents 依次返回预置事件，之后返回 nil
type fakeEvents struct {
	events []tcell.Event
}

func (f *fakeEvents) PollEvent() tcell.Event {
	if len(f.events) == 0 {
		return nil
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev
}

func TestPollEvents(t *testing.T) {
	key := func() tcell.Event { return tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone) }

	t.Run("forwards until the source ends", func(t *testing.T) {
		src := &fakeEvents{events: []tcell.Event{key(), key()}}
		events := make(chan tcell.Event, 4)
		finished := make(chan struct{})
		go func() {
			pollEvents(src, events, make(chan struct{}))
			close(finished)
		}()

		select {
		case <-finished:
		case <-time.After(time.Second):
			t.Fatal("pollEvents did not return after the source ended")
		}
		if len(events) != 2 {
			t.Errorf("forwarded events: got %d, want 2", len(events))
		}
	})

	t.Run("returns when done is closed with a full channel", func(t *testing.T) {
		src := &fakeEvents{events: []tcell.Event{key(), key(), key()}}
		events := make(chan tcell.Event) // 无人接收
		done := make(chan struct{})
		finished := make(chan struct{})
		go func() {
			pollEvents(src, events, done)
			close(finished)
		}()

		close(done)
		select {
		case <-finished:
		case <-time.After(time.Second):
			t.Fatal("pollEvents blocked after done was closed")
		}
	})
}
