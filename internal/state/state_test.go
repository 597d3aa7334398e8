package state

import (
	"testing"

	"github.com/J-Olejnik/arepas/internal/api"
)

func TestNewStoreDefaults(t *testing.T) {
	s := NewStore()
	app := s.Get()
	if app.UI.ActiveTab != TabMain {
		t.Fatalf("active tab = %q, want %q", app.UI.ActiveTab, TabMain)
	}
	c := app.UI.Controls
	if !c.PrevDisabled || !c.NextDisabled || !c.SaveDisabled || !c.DownloadDisabled || !c.IntakeDisabled {
		t.Fatalf("expected batch controls disabled at startup, got %+v", c)
	}
	if c.ModelChangeDisabled {
		t.Fatal("model change should be available at startup")
	}
}

func TestResetBatchClearsTogether(t *testing.T) {
	s := NewStore()
	s.UpdateData(func(d *Data) {
		d.InputBatch = []api.File{{Name: "a.png"}, {Name: "b.png"}}
		d.Results = make([]api.PredictionResult, 2)
		d.CurrentIndex = 1
	})

	s.ResetBatch()

	app := s.Get()
	if app.Data.CurrentIndex != 0 {
		t.Errorf("index = %d, want 0", app.Data.CurrentIndex)
	}
	if app.Data.Images != nil || app.Data.Saliency != nil || app.Data.Results != nil {
		t.Error("rasters and results should be cleared together")
	}
	if app.Data.InputBatch == nil {
		t.Error("input batch is left for the caller to replace")
	}
}

func TestPatientProjection(t *testing.T) {
	s := NewStore()
	if _, err := s.Patient(); err != ErrNoBatch {
		t.Fatalf("empty store: err = %v, want ErrNoBatch", err)
	}

	var result api.PredictionResult
	result.Predictions = []float64{0.83, 1}
	s.UpdateData(func(d *Data) {
		d.InputBatch = []api.File{{Name: "scan_001.png"}}
		d.Results = []api.PredictionResult{result}
	})

	p, err := s.Patient()
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != "scan_001" {
		t.Errorf("patient id = %q, want scan_001", p.ID)
	}
	if p.Confidence != "83.0%" {
		t.Errorf("confidence = %q, want 83.0%%", p.Confidence)
	}

	s.UpdateData(func(d *Data) { d.CurrentIndex = 5 })
	if _, err := s.Patient(); err != ErrNoBatch {
		t.Fatalf("out of range: err = %v, want ErrNoBatch", err)
	}
}

func TestPatientID(t *testing.T) {
	cases := map[string]string{
		"scan_001.png":       "scan_001",
		"/tmp/scans/p42.jpg": "p42",
		"noext":              "noext",
		"two.dots.jpeg":      "two.dots",
	}
	for in, want := range cases {
		if got := PatientID(in); got != want {
			t.Errorf("PatientID(%q) = %q, want %q", in, got, want)
		}
	}
}
