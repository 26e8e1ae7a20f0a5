package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/user/twinsim/pkg/twin"
)

func TestClientListProfiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		// Verify the request path: base_url includes /api, client appends /profiles
		if r.URL.Path != "/api/profiles" {
			t.Errorf("expected path '/api/profiles', got %q", r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		resp := []map[string]any{
			{"id": "alex", "name": "Alex", "age": 29, "mbti": "ENFP", "interests": []string{"hiking"}, "values": []string{"honesty"}, "spontaneity_level": 8, "emotional_expressiveness": 7},
			{"id": "sam", "name": "Sam", "age": 31, "mbti": "INTJ", "bio": "Reads a lot"},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := New(&twin.Config{BaseURL: server.URL + "/api"})
	profiles, err := client.ListProfiles(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	if profiles[0].MBTI != "ENFP" || profiles[0].SpontaneityLevel != 8 {
		t.Errorf("unexpected first profile: %+v", profiles[0])
	}
	if profiles[1].Bio != "Reads a lot" {
		t.Errorf("expected bio, got %q", profiles[1].Bio)
	}
}

func TestClientCreateSimulationRequestFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/simulations" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected Content-Type 'application/json', got %q", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("expected bearer token, got %q", r.Header.Get("Authorization"))
		}

		body, _ := io.ReadAll(r.Body)
		var reqBody map[string]any
		json.Unmarshal(body, &reqBody)
		if reqBody["profile1_id"] != "alex" || reqBody["profile2_id"] != "sam" {
			t.Errorf("unexpected body: %s", body)
		}

		json.NewEncoder(w).Encode(map[string]any{"simulation_id": "alex_sam_1", "status": "pending"})
	}))
	defer server.Close()

	client := New(&twin.Config{BaseURL: server.URL + "/", Token: "secret"})
	created, err := client.CreateSimulation(context.Background(), "alex", "sam")
	if err != nil {
		t.Fatal(err)
	}
	if created.SimulationID != "alex_sam_1" || created.Status != "pending" {
		t.Errorf("unexpected response: %+v", created)
	}
}

func TestClientGetSimulationReturnsRawRecord(t *testing.T) {
	record := `{"simulation_id":"s1","status":"completed","result":{"days":[]}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/simulations/s1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(record))
	}))
	defer server.Close()

	client := New(&twin.Config{BaseURL: server.URL})
	raw, err := client.GetSimulation(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != record {
		t.Errorf("expected raw record %s, got %s", record, raw)
	}
}

func TestClientDeleteSimulation(t *testing.T) {
	var called bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if r.Method != http.MethodDelete || r.URL.Path != "/simulations/s1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"message":"Simulation deleted successfully"}`))
	}))
	defer server.Close()

	client := New(&twin.Config{BaseURL: server.URL})
	if err := client.DeleteSimulation(context.Background(), "s1"); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("expected server to be called")
	}
}

func TestClientChatFlow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chats/start", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["profile_id"] != "sam" || req["user_name"] != "You" {
			t.Errorf("unexpected start body: %v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{"chat_id": "c1", "profile_name": "Sam", "profile_mbti": "INTJ", "initial_fondness": 50})
	})
	mux.HandleFunc("POST /chats/c1/message", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["message"] != "hello" || req["context"] != "texting" {
			t.Errorf("unexpected message body: %v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{"message": "hi", "emotion": "shy", "internal_thought": "ok", "fondness_change": 3, "fondness_level": 53})
	})
	mux.HandleFunc("GET /chats/c1/history", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chat_id":"c1","profile_name":"Sam","conversation":[{"role":"user"},{"role":"twin"}],"current_fondness":53,"message_count":2}`))
	})
	mux.HandleFunc("DELETE /chats/c1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Chat ended","saved_to":"chats/c1.json","final_fondness":53}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := New(&twin.Config{BaseURL: server.URL})
	ctx := context.Background()

	started, err := client.StartChat(ctx, "sam", "You")
	if err != nil {
		t.Fatal(err)
	}
	if started.ChatID != "c1" || started.InitialFondness != 50 || started.ProfileMBTI != "INTJ" {
		t.Errorf("unexpected start response: %+v", started)
	}

	reply, err := client.SendMessage(ctx, "c1", "hello", "texting")
	if err != nil {
		t.Fatal(err)
	}
	if reply.FondnessLevel != 53 || reply.FondnessChange != 3 {
		t.Errorf("unexpected reply: %+v", reply)
	}

	history, err := client.ChatHistory(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if history.MessageCount != 2 || len(history.Conversation) != 2 {
		t.Errorf("unexpected history: %+v", history)
	}

	ended, err := client.EndChat(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if ended.FinalFondness != 53 {
		t.Errorf("expected final fondness 53, got %d", ended.FinalFondness)
	}
}

func TestClientAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Simulation not found"}`))
	}))
	defer server.Close()

	client := New(&twin.Config{BaseURL: server.URL})
	_, err := client.GetSimulation(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	var apiErr *twin.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *twin.APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", apiErr.StatusCode)
	}
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := New(&twin.Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	_, err := client.ListProfiles(context.Background())
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var apiErr *twin.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("expected transport error, got API error %v", apiErr)
	}
}

func TestClientBackendInterface(t *testing.T) {
	// Verify Client satisfies the twin.Backend interface at compile time.
	var _ twin.Backend = (*Client)(nil)
}

func TestClientGetProfileEscapesID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/profiles/a%2Fb" {
			t.Errorf("expected escaped path, got %q", r.URL.EscapedPath())
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "a/b", "name": "Alex"})
	}))
	defer server.Close()

	client := New(&twin.Config{BaseURL: server.URL})
	p, err := client.GetProfile(context.Background(), "a/b")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Alex" {
		t.Errorf("expected Alex, got %q", p.Name)
	}
}

func TestClientListSimulations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/simulations" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`[
			{"simulation_id": "s1", "profile1": "Alex", "profile2": "Sam", "status": "completed", "compatibility_score": 81, "completed_days": 7},
			{"simulation_id": "s2", "profile1": "Alex", "profile2": "Jo", "status": "running", "completed_days": 3}
		]`))
	}))
	defer server.Close()

	client := New(&twin.Config{BaseURL: server.URL})
	list, err := client.ListSimulations(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 simulations, got %d", len(list))
	}
	if list[0].CompatibilityScore == nil || *list[0].CompatibilityScore != 81 {
		t.Errorf("unexpected score on first simulation: %v", list[0].CompatibilityScore)
	}
	if list[1].CompatibilityScore != nil {
		t.Errorf("expected nil score on running simulation")
	}
}
