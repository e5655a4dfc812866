package storage

import "testing"

func TestPublicURLs(t *testing.T) {
	p := newPublicURLs("https://cdn.example.com/media/")

	url := p.ObjectURL("/methods/abc/video.mp4")
	if url != "https://cdn.example.com/media/methods/abc/video.mp4" {
		t.Errorf("Expected joined URL, got %q", url)
	}

	key, err := p.KeyFromURL(url)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if key != "methods/abc/video.mp4" {
		t.Errorf("Expected key methods/abc/video.mp4, got %q", key)
	}

	for _, foreign := range []string{
		"https://youtube.com/watch?v=1",
		"https://cdn.example.com/media/",
		"https://cdn.example.com/mediaX/a.mp4",
	} {
		if _, err := p.KeyFromURL(foreign); err != ErrForeignURL {
			t.Errorf("Expected ErrForeignURL for %q, got %v", foreign, err)
		}
	}
}

func TestPublicURLsEmptyBase(t *testing.T) {
	p := newPublicURLs("")
	if _, err := p.KeyFromURL("/a.mp4"); err != ErrForeignURL {
		t.Errorf("Expected ErrForeignURL with empty base, got %v", err)
	}
}
