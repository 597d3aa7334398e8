package api

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// File is one image queued for prediction.
type File struct {
	Name string
	Data []byte
}

// PredictionResult is one element of the predict response. The backend
// packs score and class into a two-element array: [raw score, class].
type PredictionResult struct {
	Predictions []float64 `json:"predictions"`
	Images      struct {
		GradCAM string `json:"gradcam"`
	} `json:"images"`
}

// Score returns the raw prediction score in [0,1].
func (r PredictionResult) Score() float64 {
	if len(r.Predictions) == 0 {
		return 0
	}
	return r.Predictions[0]
}

// Class returns the predicted class (0 or 1).
func (r PredictionResult) Class() int {
	if len(r.Predictions) < 2 {
		return 0
	}
	return int(r.Predictions[1])
}

// Confidence returns the formatted confidence for the result.
func (r PredictionResult) Confidence() string {
	return Confidence(r.Score(), r.Class())
}

// Confidence derives the confidence percentage from score and class:
// the score itself for class 1, its complement for class 0.
func Confidence(score float64, class int) string {
	conf := score
	if class != 1 {
		conf = 1 - score
	}
	return fmt.Sprintf("%.1f%%", conf*100)
}

// Record is a persisted review row.
type Record struct {
	ID             int64   `json:"id"`
	PatientID      string  `json:"pID"`
	Date           string  `json:"date_of_prediction"`
	PredictedClass int     `json:"predicted_class"`
	Prediction     float64 `json:"prediction"`
	Reviewer       string  `json:"reviewer"`
	Status         string  `json:"status"`
	Annotation     string  `json:"annotation"`
}

// Confidence derives the confidence string for the row; it is computed
// at load time and never stored.
func (r Record) Confidence() string {
	return Confidence(r.Prediction, r.PredictedClass)
}

// SavePayload is the body of a save-to-database request. ID is nil for
// new rows; existing rows carry their id and only the three
// reviewer-editable fields are honored by the backend on conflict.
type SavePayload struct {
	ID             *int64  `json:"id"`
	PatientID      string  `json:"pID"`
	PredictedClass int     `json:"predicted_class"`
	Prediction     float64 `json:"prediction"`
	Reviewer       string  `json:"reviewer"`
	Status         string  `json:"status"`
	Annotation     string  `json:"annotation"`
}

// ModelStatus is the model-status response.
type ModelStatus struct {
	Ready bool   `json:"status"`
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
}

// Notification is a push event from the notification channel. Ready is
// a pointer because its absence and false mean different things.
type Notification struct {
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
	Ready   *bool  `json:"status,omitempty"`
	Name    string `json:"name,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ReviewStatuses are the accepted review states, in display order.
var ReviewStatuses = []string{"Open", "Reviewed", "Flagged"}

// DecodeDataURI strips a data:<mime>;base64, prefix and decodes the
// payload. Bare base64 without a prefix is accepted too.
func DecodeDataURI(uri string) ([]byte, error) {
	payload := uri
	if strings.HasPrefix(uri, "data:") {
		idx := strings.Index(uri, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data uri")
		}
		payload = uri[idx+1:]
	}
	return base64.StdEncoding.DecodeString(payload)
}
