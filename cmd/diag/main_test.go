package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const diagCSV = "t,x,y,z,v_x,v_y,v_z,mass\n0, 7000000,0,0,0,7500,0,1\n500, 6500000,3000000,0,0,0,0,1\n"

func TestLoadFileFormats(t *testing.T) {
	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	if _, err := gw.Write([]byte(diagCSV)); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}

	var zs bytes.Buffer
	zw, err := zstd.NewWriter(&zs)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := zw.Write([]byte(diagCSV)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	tests := map[string][]byte{
		"particle 46.csv":     []byte(diagCSV),
		"particle 46.csv.gz":  gz.Bytes(),
		"particle 46.csv.zst": zs.Bytes(),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, data, 0644); err != nil {
				t.Fatal(err)
			}

			s, err := loadFile(context.Background(), path)
			if err != nil {
				t.Fatalf("loadFile(%s): %v", name, err)
			}
			if s.Name != "particle 46" {
				t.Errorf("name = %q, want %q", s.Name, "particle 46")
			}
			if s.Len() != 2 {
				t.Errorf("got %d samples, want 2", s.Len())
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := loadFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
