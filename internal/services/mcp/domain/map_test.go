package domain

import (
	"bytes"
	"context"
	"io"
	"slices"
	"testing"

	"github.com/louisbranch/battlegrid/internal/combat"
	"github.com/louisbranch/battlegrid/internal/core/dice"
	"github.com/louisbranch/battlegrid/internal/platform/id"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type fakeMap struct {
	png []byte
}

func (m *fakeMap) EncodePNG(w io.Writer) error {
	_, err := w.Write(m.png)
	return err
}

func TestMapResource(t *testing.T) {
	src := dice.NewSource(1)
	engine := combat.New(combat.Config{Dice: src, IDs: id.Sequential("id")})
	scene := &fakeMap{png: []byte("\x89PNG")}
	session, err := NewSession(SessionConfig{Engine: engine, Dice: src, Map: scene})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if !session.HasMap() {
		t.Fatal("expected map to be attached")
	}
	var notified []string
	session.SetNotifier(func(_ context.Context, uri string) { notified = append(notified, uri) })

	if _, _, err := EntityAddHandler(session)(context.Background(), nil, EntityAddInput{Name: "Fighter", MaxHP: 10}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !slices.Contains(notified, MapResourceURI) {
		t.Fatalf("notified = %v, want map update", notified)
	}

	result, err := MapResourceHandler(session)(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: MapResourceURI}})
	if err != nil {
		t.Fatalf("read map: %v", err)
	}
	if len(result.Contents) != 1 || result.Contents[0].MIMEType != pngMIME {
		t.Fatalf("contents = %+v", result.Contents)
	}
	if !bytes.Equal(result.Contents[0].Blob, scene.png) {
		t.Fatalf("blob = %q", result.Contents[0].Blob)
	}
}

func TestMapResourceWithoutMap(t *testing.T) {
	ts := newTestSession(t, false)
	if ts.HasMap() {
		t.Fatal("expected no map")
	}
	if _, err := MapResourceHandler(ts.Session)(context.Background(), nil); err == nil {
		t.Fatal("expected error without a map")
	}
	if _, _, err := EntityAddHandler(ts.Session)(context.Background(), nil, EntityAddInput{Name: "Fighter", MaxHP: 10}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if slices.Contains(ts.notified, MapResourceURI) {
		t.Fatalf("notified = %v, map should not update", ts.notified)
	}
}
