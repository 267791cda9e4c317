package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gapscope/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "gapscope.db")
	st, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestRecordAndReloadConfig(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	id, err := st.RecordUpload(ctx, model.UploadRecord{
		Path:       "/data/churn.csv",
		Filename:   "churn.csv",
		UploadedAt: time.Unix(1000, 0).UTC(),
	})
	if err != nil {
		t.Fatalf("record upload: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected a non-zero id")
	}

	cfg := model.WizardConfig{
		HeaderRow: model.HeaderPresent,
		Indicators: model.MissingIndicators{
			Blanks:       true,
			Custom:       true,
			CustomTokens: "-999, ?",
		},
		TargetFeature: "churn",
		TargetType:    model.TargetCategorical,
	}
	if err := st.SaveConfig(ctx, id, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}

	got, found, err := st.LastConfigForPath(ctx, "/data/churn.csv")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !found {
		t.Fatalf("expected a remembered config")
	}
	if got != cfg {
		t.Fatalf("expected %+v, got %+v", cfg, got)
	}
}

func TestLastConfigForUnknownPath(t *testing.T) {
	st := openTestStore(t)
	_, found, err := st.LastConfigForPath(context.Background(), "/nowhere.csv")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if found {
		t.Fatalf("expected no config for an unseen path")
	}
}

func TestLastConfigPicksNewestUpload(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	older, err := st.RecordUpload(ctx, model.UploadRecord{
		Path:       "/data/churn.csv",
		Filename:   "churn.csv",
		UploadedAt: time.Unix(1000, 0).UTC(),
	})
	if err != nil {
		t.Fatalf("record upload: %v", err)
	}
	newer, err := st.RecordUpload(ctx, model.UploadRecord{
		Path:       "/data/churn.csv",
		Filename:   "churn.csv",
		UploadedAt: time.Unix(2000, 0).UTC(),
	})
	if err != nil {
		t.Fatalf("record upload: %v", err)
	}

	if err := st.SaveConfig(ctx, older, model.WizardConfig{HeaderRow: model.HeaderAbsent, Indicators: model.MissingIndicators{NA: true}}); err != nil {
		t.Fatalf("save config: %v", err)
	}
	if err := st.SaveConfig(ctx, newer, model.WizardConfig{HeaderRow: model.HeaderPresent, Indicators: model.MissingIndicators{Blanks: true}}); err != nil {
		t.Fatalf("save config: %v", err)
	}

	cfg, found, err := st.LastConfigForPath(ctx, "/data/churn.csv")
	if err != nil || !found {
		t.Fatalf("load config: %v found=%v", err, found)
	}
	if cfg.HeaderRow != model.HeaderPresent || !cfg.Indicators.Blanks {
		t.Fatalf("expected the newest config, got %+v", cfg)
	}
}

func TestListUploadsNewestFirst(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	for i, name := range []string{"a.csv", "b.csv", "c.csv"} {
		_, err := st.RecordUpload(ctx, model.UploadRecord{
			Path:       "/data/" + name,
			Filename:   name,
			UploadedAt: time.Unix(int64(1000+i), 0).UTC(),
		})
		if err != nil {
			t.Fatalf("record upload: %v", err)
		}
	}

	uploads, err := st.ListUploads(ctx, 2)
	if err != nil {
		t.Fatalf("list uploads: %v", err)
	}
	if len(uploads) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(uploads))
	}
	if uploads[0].Filename != "c.csv" || uploads[1].Filename != "b.csv" {
		t.Fatalf("expected newest first, got %s then %s", uploads[0].Filename, uploads[1].Filename)
	}
}
