package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/phanxgames/barboard"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	v := newViper()
	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Width != 1280 || cfg.Height != 800 {
		t.Errorf("size = %dx%d, want 1280x800", cfg.Width, cfg.Height)
	}
	if !cfg.Clipboard {
		t.Error("clipboard should default to on")
	}
	if cfg.DataDir == "" {
		t.Error("data dir should have a default")
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yaml := "width: 640\nheight: 480\ncatalog: menu.json\n"
	if err := os.WriteFile(filepath.Join(dir, "barboard.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BARBOARD_HEIGHT", "360")

	cfg, err := loadConfig(newViper())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Width != 640 {
		t.Errorf("width = %d, want 640 from file", cfg.Width)
	}
	if cfg.Height != 360 {
		t.Errorf("height = %d, want 360 from env", cfg.Height)
	}
	if cfg.Catalog != "menu.json" {
		t.Errorf("catalog = %q", cfg.Catalog)
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	data := `{"recipes":[{"id":"negroni","name":"Negroni","salePrice":10,"lines":[{"ingredientId":"gin","quantity":0.03}]}],
		"ingredients":[{"id":"gin","name":"Gin","unit":"l","unitCost":20}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := loadCatalog(path)
	if err != nil {
		t.Fatalf("loadCatalog: %v", err)
	}
	if len(c.Recipes) != 1 || len(c.Ingredients) != 1 || c.Recipes[0].Lines[0].IngredientID != "gin" {
		t.Errorf("catalog = %+v", c)
	}

	if c, err := loadCatalog(""); err != nil || len(c.Recipes) != 0 {
		t.Errorf("empty path = %+v, %v", c, err)
	}
}

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.json")
	out := filepath.Join(dir, "out.json")

	store := barboard.NewStore()
	store.AddNode(barboard.NewTextNode("Friday", 10, 10, 200, 40))
	if err := saveDocument(store, in); err != nil {
		t.Fatalf("saveDocument: %v", err)
	}

	root := newRootCmd()
	root.SetArgs([]string{"export", in, "-o", out, "--data-dir", dir})
	if err := root.Execute(); err != nil {
		t.Fatalf("export: %v", err)
	}

	reread := barboard.NewStore()
	if err := loadDocument(reread, out); err != nil {
		t.Fatalf("loadDocument: %v", err)
	}
	if got := len(reread.Snapshot().Nodes); got != 1 {
		t.Errorf("nodes = %d, want 1", got)
	}
}

func TestExportNeedsInput(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"export", "--data-dir", t.TempDir()})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "nothing to export") {
		t.Errorf("err = %v, want nothing to export", err)
	}
}

// flakyFile is a WriteCloser whose Close fails.
type flakyFile struct {
	strings.Builder
	closed bool
}

func (f *flakyFile) Close() error {
	f.closed = true
	return errors.New("disk full")
}

func TestCloseAfterReportsErrors(t *testing.T) {
	tests := []struct {
		name     string
		writeErr error
		want     string
	}{
		{"close fails", nil, "close output: disk full"},
		{"write fails first", errors.New("encode"), "encode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &flakyFile{}
			err := closeAfter(f, func(w io.Writer) error {
				_, _ = io.WriteString(w, "png")
				return tt.writeErr
			})
			if err == nil || err.Error() != tt.want {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
			if !f.closed {
				t.Error("file left open")
			}
		})
	}
}

func TestExportPNGFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.json")
	out := filepath.Join(dir, "board.png")
	store := barboard.NewStore()
	store.AddNode(barboard.NewTextNode("Friday", 10, 10, 200, 40))
	if err := saveDocument(store, in); err != nil {
		t.Fatalf("saveDocument: %v", err)
	}

	root := newRootCmd()
	root.SetArgs([]string{"export", in, "-o", out, "--data-dir", dir})
	if err := root.Execute(); err != nil {
		t.Fatalf("export: %v", err)
	}
	if fi, err := os.Stat(out); err != nil || fi.Size() == 0 {
		t.Errorf("png = %v, %v", fi, err)
	}
}

func libraryStore(t *testing.T) *barboard.Store {
	t.Helper()
	s := barboard.NewStore()
	s.LoadResources([]barboard.BoardResource{
		{ID: "a", Name: "Bar prep", Order: 0, Content: &barboard.BoardContent{Title: "Bar prep"}},
		{ID: "b", Name: "Menu", Order: 1, Content: &barboard.BoardContent{Title: "Menu"}},
	})
	return s
}

func press(m libraryModel, keys ...string) libraryModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(libraryModel)
	}
	return m
}

func resourceIDs(s *barboard.Store) string {
	var ids []string
	for _, r := range s.Resources() {
		ids = append(ids, r.ID)
	}
	return strings.Join(ids, ",")
}

func TestLibraryReorder(t *testing.T) {
	s := libraryStore(t)
	m := press(newLibraryModel(s), "J")
	if got := resourceIDs(s); got != "b,a" {
		t.Errorf("order = %s, want b,a", got)
	}
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want to follow the moved row", m.cursor)
	}
	// Already last.
	press(m, "J")
	if got := resourceIDs(s); got != "b,a" {
		t.Errorf("order = %s after moving past the end", got)
	}
}

func TestLibraryDeleteConfirm(t *testing.T) {
	s := libraryStore(t)
	m := press(newLibraryModel(s), "d", "n")
	if got := resourceIDs(s); got != "a,b" {
		t.Fatalf("cancelled delete removed a resource: %s", got)
	}
	m = press(m, "j", "d", "y")
	if got := resourceIDs(s); got != "a" {
		t.Errorf("resources = %s, want a", got)
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want clamped to 0", m.cursor)
	}
}

func TestLibraryTemplatesTab(t *testing.T) {
	s := libraryStore(t)
	m := press(newLibraryModel(s), "tab", "d")
	if m.confirm {
		t.Error("templates tab should not offer delete")
	}
	if !strings.Contains(m.View(), "Kanban") {
		t.Error("templates view should list the built-in catalog")
	}
}
