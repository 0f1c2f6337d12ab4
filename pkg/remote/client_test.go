package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoadAllParsesListAndRevision(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/list" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		fmt.Fprint(w, `{"status":"ok","revision":7,"list":[
			{"id":"id-1","text":"Buy milk","importance":"basic","done":false,"created_at":100,"changed_at":200,"last_updated_by":"go-app-abc"},
			{"id":"id-2","text":"Call bank","importance":"important","deadline":300,"done":true,"color":"#FF0000","created_at":100,"changed_at":200,"last_updated_by":"go-app-abc"}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	records, err := c.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].ID != "id-1" || records[0].Text != "Buy milk" {
		t.Errorf("Unexpected first record: %+v", records[0])
	}
	if records[1].Deadline == nil || *records[1].Deadline != 300 {
		t.Errorf("Expected deadline 300, got %v", records[1].Deadline)
	}
	if c.Revision() != 7 {
		t.Errorf("Expected revision 7, got %d", c.Revision())
	}
}

func TestMutationsCarryRevisionHeader(t *testing.T) {
	var gotRevision, gotMethod, gotPath string
	var gotBody elementRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, `{"status":"ok","revision":7,"list":[]}`)
			return
		}
		gotRevision = r.Header.Get("X-Last-Known-Revision")
		gotMethod = r.Method
		gotPath = r.URL.Path
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&gotBody)
		}
		fmt.Fprint(w, `{"status":"ok","revision":8}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	ctx := context.Background()
	if _, err := c.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	rec := Record{ID: "id-1", Text: "Buy milk", Importance: "basic", CreatedAt: 100, ChangedAt: 200, LastUpdatedBy: "go-app-abc"}
	if err := c.Update(ctx, rec); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if gotRevision != "7" {
		t.Errorf("Expected X-Last-Known-Revision 7, got %q", gotRevision)
	}
	if gotMethod != http.MethodPut || gotPath != "/list/id-1" {
		t.Errorf("Expected PUT /list/id-1, got %s %s", gotMethod, gotPath)
	}
	if gotBody.Element.Text != "Buy milk" {
		t.Errorf("Expected element wrapper with text, got %+v", gotBody.Element)
	}
	if c.Revision() != 8 {
		t.Errorf("Expected revision bumped to 8, got %d", c.Revision())
	}
}

func TestCreatePostsElement(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"status":"ok","revision":1}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	if err := c.Create(context.Background(), Record{ID: "id-1", Text: "x"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/list" {
		t.Errorf("Expected POST /list, got %s %s", gotMethod, gotPath)
	}
}

func TestDeleteSendsRevisionHeader(t *testing.T) {
	var gotMethod, gotPath, gotRevision string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotRevision = r.Header.Get("X-Last-Known-Revision")
		fmt.Fprint(w, `{"status":"ok","revision":2}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	if err := c.Delete(context.Background(), "id-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/list/id-1" {
		t.Errorf("Expected DELETE /list/id-1, got %s %s", gotMethod, gotPath)
	}
	if gotRevision != "0" {
		t.Errorf("Expected revision header 0, got %q", gotRevision)
	}
}

func TestNonOKStatusIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"error","revision":0}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	if _, err := c.LoadAll(context.Background()); err == nil {
		t.Error("Expected error for non-ok list status")
	}
	if err := c.Create(context.Background(), Record{ID: "id-1"}); err == nil {
		t.Error("Expected error for non-ok mutation status")
	}
}

func TestHTTPErrorLeavesRevisionUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad revision", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	if err := c.Update(context.Background(), Record{ID: "id-1"}); err == nil {
		t.Error("Expected error for HTTP 400")
	}
	if c.Revision() != 0 {
		t.Errorf("Failed call must not move the revision, got %d", c.Revision())
	}
}

func TestHTTPClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"status":"ok","revision":0,"list":[]}`)
	}))
	defer srv.Close()

	ctx := context.Background()
	c := NewClient(srv.URL, NewHTTPClient(ctx, "secret-token"))
	if _, err := c.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("Expected bearer credential on request, got %q", gotAuth)
	}
}
