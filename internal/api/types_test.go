package api

import (
	"encoding/json"
	"testing"
)

func TestConfidence(t *testing.T) {
	cases := []struct {
		score float64
		class int
		want  string
	}{
		{0.83, 1, "83.0%"},
		{0.83, 0, "17.0%"},
		{0.5, 0, "50.0%"},
		{0.999, 1, "99.9%"},
	}
	for _, c := range cases {
		if got := Confidence(c.score, c.class); got != c.want {
			t.Errorf("Confidence(%v, %d) = %q, want %q", c.score, c.class, got, c.want)
		}
	}
}

func TestPredictionResultDecoding(t *testing.T) {
	raw := `{"predictions":[0.91,1],"images":{"gradcam":"data:image/jpeg;base64,aGk="}}`
	var r PredictionResult
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatal(err)
	}
	if r.Score() != 0.91 || r.Class() != 1 {
		t.Errorf("score=%v class=%d", r.Score(), r.Class())
	}
	if r.Images.GradCAM == "" {
		t.Error("gradcam missing")
	}
}

func TestSavePayloadIDPresence(t *testing.T) {
	data, err := json.Marshal(SavePayload{PatientID: "p1"})
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["id"] != nil {
		t.Errorf("new record id = %v, want null", decoded["id"])
	}

	id := int64(42)
	data, err = json.Marshal(SavePayload{ID: &id})
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["id"] != float64(42) {
		t.Errorf("existing record id = %v, want 42", decoded["id"])
	}
}

func TestDecodeDataURI(t *testing.T) {
	got, err := DecodeDataURI("data:image/jpeg;base64,aGVsbG8=")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Errorf("decoded %q, want hello", got)
	}

	got, err = DecodeDataURI("aGVsbG8=")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Errorf("bare base64 decoded %q, want hello", got)
	}

	if _, err := DecodeDataURI("data:image/jpeg;base64"); err == nil {
		t.Error("missing comma should fail")
	}
}
