package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAsk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/ask" {
			http.NotFound(w, r)
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["query"] != "How many leave days?" {
			t.Errorf("query = %q", body["query"])
		}
		w.Write([]byte(`{"answer":"20 days","processing_time":"0.42s"}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL+"/", time.Second).Ask(context.Background(), "How many leave days?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if resp.Answer != "20 days" || resp.ProcessingTime != "0.42s" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestAsk_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"upstream down"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Ask(context.Background(), "q")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StatusError", err)
	}
	if se.Code != 500 || se.Detail != "upstream down" {
		t.Errorf("StatusError = %+v", se)
	}
}

func TestAsk_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).Ask(context.Background(), "q")
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("err = %v, want ErrUnreachable", err)
	}
}

func TestAsk_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, 50*time.Millisecond).Ask(context.Background(), "q")
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("err = %v, want ErrUnreachable on timeout", err)
	}
}

func TestIngest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if got := r.PostForm.Get("document_name"); got != "policy.pdf" {
			t.Errorf("document_name = %q", got)
		}
		chunks := r.PostForm["chunks"]
		if len(chunks) != 2 || chunks[0] != "p1" || chunks[1] != "p2" {
			t.Errorf("chunks = %v", chunks)
		}
		w.Write([]byte(`{"status":"success","message":"2 chunks ajoutés à la base"}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL, time.Second).Ingest(context.Background(), "policy.pdf", []string{"p1", "p2"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("resp = %+v", resp)
	}
}

func healthServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := healthServer(t, `{"status":"healthy","vector_db_docs":3,"llm_provider":"Mistral AI (Official)","model":"mistral-large-latest"}`)

	resp, err := New(srv.URL, time.Second).Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if resp.VectorDBDocs != 3 || resp.Model != "mistral-large-latest" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHealth_Degraded(t *testing.T) {
	srv := healthServer(t, `{"status":"error","detail":"db locked"}`)

	_, err := New(srv.URL, time.Second).Health(context.Background())
	var se *StatusError
	if !errors.As(err, &se) || se.Detail != "db locked" {
		t.Errorf("err = %v, want degraded StatusError", err)
	}
}
