package wiki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"Blookin/internal/config"
	"Blookin/internal/domain"
)

func lookupAgainst(t *testing.T, handler http.Handler) *Lookup {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewLookup(config.WikiConfig{BaseURL: srv.URL, UserAgent: "test-agent"}, srv.Client(), nil)
}

func TestLookupFoundAuthor(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("prop") {
		case "extracts":
			w.Write([]byte(`{"query":{"pages":{"100":{"extract":"  South Korean writer.  "}}}}`))
		case "pageimages":
			w.Write([]byte(`{"query":{"pages":{"100":{"original":{"source":"https://img.example.org/p.jpg"}}}}}`))
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/wiki/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<table class="infobox"><tr><td>대표작 《채식주의자》, 《소년이 온다》, 《채식주의자》</td></tr></table>
			<p>본문의 《흰》 언급은 수집 대상이 아니다.</p>
		</body></html>`))
	})

	result, err := lookupAgainst(t, mux).Lookup(context.Background(), "한강")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Found {
		t.Fatal("expected author to be found")
	}
	if result.Summary != "South Korean writer." {
		t.Errorf("unexpected summary %q", result.Summary)
	}
	if result.ImageURL != "https://img.example.org/p.jpg" {
		t.Errorf("unexpected image url %q", result.ImageURL)
	}
	want := []string{"채식주의자", "소년이 온다"}
	if len(result.Works) != len(want) {
		t.Fatalf("expected works %v, got %v", want, result.Works)
	}
	for i := range want {
		if result.Works[i] != want[i] {
			t.Errorf("work %d: expected %q, got %q", i, want[i], result.Works[i])
		}
	}
}

func TestLookupMissingPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query":{"pages":{"-1":{"missing":""}}}}`))
	})

	result, err := lookupAgainst(t, mux).Lookup(context.Background(), "Nobody Knows")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Found {
		t.Error("expected missing page to report not found")
	}
	if !reflect.DeepEqual(result, domain.AuthorLookup{}) {
		t.Errorf("expected zero-value lookup, got %+v", result)
	}
}

func TestLookupServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusInternalServerError)
	})

	result, err := lookupAgainst(t, mux).Lookup(context.Background(), "한강")
	if err != nil {
		t.Fatalf("expected failures to collapse into zero value, got error: %v", err)
	}
	if result.Found {
		t.Error("expected not found on server error")
	}
}

func TestLookupWorksFallBackToArticleBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("prop") == "extracts" {
			w.Write([]byte(`{"query":{"pages":{"100":{"extract":"Writer."}}}}`))
			return
		}
		w.Write([]byte(`{"query":{"pages":{}}}`))
	})
	mux.HandleFunc("/wiki/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>대표작으로 《토지》가 있다.</p></body></html>`))
	})

	result, err := lookupAgainst(t, mux).Lookup(context.Background(), "박경리")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Works) != 1 || result.Works[0] != "토지" {
		t.Errorf("expected works from article body, got %v", result.Works)
	}
	if result.ImageURL != "" {
		t.Errorf("expected no image, got %q", result.ImageURL)
	}
}

func TestLookupSendsUserAgent(t *testing.T) {
	var got string
	mux := http.NewServeMux()
	mux.HandleFunc("/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.Write([]byte(`{"query":{"pages":{}}}`))
	})

	if _, err := lookupAgainst(t, mux).Lookup(context.Background(), "한강"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "test-agent" {
		t.Errorf("expected configured user agent, got %q", got)
	}
}
