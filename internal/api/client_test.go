package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPredictSingleRequest(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/api/predict" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatal(err)
		}
		files := r.MultipartForm.File["files"]
		if len(files) != 3 {
			t.Errorf("got %d files, want 3", len(files))
		}
		if files[0].Filename != "a.png" {
			t.Errorf("first file = %s", files[0].Filename)
		}
		f, _ := files[1].Open()
		data, _ := io.ReadAll(f)
		f.Close()
		if string(data) != "bb" {
			t.Errorf("second file body = %q", data)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"predictions":[0.9,1],"images":{"gradcam":"g1"}},
			{"predictions":[0.2,0],"images":{"gradcam":"g2"}},
			{"predictions":[0.7,1],"images":{"gradcam":"g3"}}
		]`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	results, err := client.Predict(context.Background(), []File{
		{Name: "a.png", Data: []byte("aa")},
		{Name: "b.png", Data: []byte("bb")},
		{Name: "c.png", Data: []byte("cc")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if requests != 1 {
		t.Errorf("whole batch should be one request, got %d", requests)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	if results[1].Class() != 0 || results[1].Confidence() != "80.0%" {
		t.Errorf("result[1] = %+v", results[1])
	}
}

func TestErrorDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"oom"}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.LoadDatabase(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T, want *Error", err)
	}
	if apiErr.Status != 500 || apiErr.Message != "oom" {
		t.Errorf("got %+v", apiErr)
	}
}

func TestReloadModelForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatal(err)
		}
		if got := r.FormValue("filename"); got != "m.keras" {
			t.Errorf("filename = %q", got)
		}
		if len(r.MultipartForm.File["model_data"]) != 1 {
			t.Error("missing model_data part")
		}
		io.WriteString(w, `{"message":"ok"}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if err := client.ReloadModel(context.Background(), "m.keras", []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteRecordBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"id":7}` {
			t.Errorf("body = %s", body)
		}
		io.WriteString(w, `{"message":"deleted"}`)
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).DeleteRecord(context.Background(), 7); err != nil {
		t.Fatal(err)
	}
}

func TestLogErrorNeverSurfaces(t *testing.T) {
	// Unreachable backend: LogError must not panic or block.
	client := NewClient("http://127.0.0.1:1")
	client.LogError(context.Background(), "boom")
}
