package gcp

import "testing"

func TestPublicURL(t *testing.T) {
	cases := []struct {
		name    string
		mode    ObjectStorageMode
		cdn     string
		baseURL string
		key     string
		want    string
	}{
		{"default", ObjectStorageModeGCS, "", "", "resources/u/1_a.pdf", "https://storage.googleapis.com/course-res/resources/u/1_a.pdf"},
		{"cdn", ObjectStorageModeGCS, "cdn.example.com", "", "/resources/x.pdf", "https://cdn.example.com/resources/x.pdf"},
		{"public base", ObjectStorageModeGCS, "", "http://localhost:4443", "a.pdf", "http://localhost:4443/course-res/a.pdf"},
		{"emulator", ObjectStorageModeGCSEmulator, "", "http://localhost:4443", "resources/a.pdf", "http://localhost:4443/storage/v1/b/course-res/o/resources%2Fa.pdf?alt=media"},
	}
	for _, tc := range cases {
		got := publicURL(tc.mode, "course-res", tc.cdn, tc.baseURL, tc.key)
		if got != tc.want {
			t.Fatalf("%s: got=%q want=%q", tc.name, got, tc.want)
		}
	}
}

func TestContentTypeForKey(t *testing.T) {
	if got := ContentTypeForKey("resources/u/1_x.PDF"); got != "application/pdf" {
		t.Fatalf("pdf: got=%q", got)
	}
	if got := ContentTypeForKey("a.png?v=2"); got != "image/png" {
		t.Fatalf("png with query: got=%q", got)
	}
	if got := ContentTypeForKey("noext"); got != "" {
		t.Fatalf("noext: got=%q", got)
	}
}

func TestResolveObjectStorageMode(t *testing.T) {
	if m, err := ResolveObjectStorageMode("", ""); err != nil || m != ObjectStorageModeGCS {
		t.Fatalf("default: m=%q err=%v", m, err)
	}
	if m, err := ResolveObjectStorageMode("", "http://fake-gcs:4443"); err != nil || m != ObjectStorageModeGCSEmulator {
		t.Fatalf("fallback: m=%q err=%v", m, err)
	}
	if _, err := ResolveObjectStorageMode("gcs_emulator", "fake-gcs"); err == nil {
		t.Fatalf("expected invalid emulator host error")
	}
	if _, err := ResolveObjectStorageMode("s3", ""); err == nil {
		t.Fatalf("expected invalid mode error")
	}
}
