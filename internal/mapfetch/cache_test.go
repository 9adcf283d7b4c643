package mapfetch

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestGetDownloadsAndCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("map contents"))
	}))
	defer srv.Close()

	cache, err := New(t.TempDir(), 1)
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	url := srv.URL + "/zones/alpha.lvl"
	data, err := cache.Get(url)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "map contents" {
		t.Errorf("Get returned %q", data)
	}
	if !cache.IsCached(url) {
		t.Error("map not cached after Get")
	}

	// Second read comes from disk.
	if _, err := cache.Get(url); err != nil {
		t.Fatalf("cached Get: %v", err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}
}

func TestGetServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cache, err := New(t.TempDir(), 1)
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	if _, err := cache.Get(srv.URL + "/missing.lvl"); err == nil {
		t.Error("Get of missing map succeeded, want error")
	}
}

func TestMapPathDistinguishesURLs(t *testing.T) {
	cache, err := New(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	a := cache.mapPath("http://zone-a.example/maps/main.lvl")
	b := cache.mapPath("http://zone-b.example/maps/main.lvl")
	if a == b {
		t.Errorf("same cache path %q for different URLs", a)
	}
}
