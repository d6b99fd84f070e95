package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prankitapotbhare/TinyLink/internal/entities"
	"github.com/prankitapotbhare/TinyLink/internal/models"
	"github.com/prankitapotbhare/TinyLink/internal/repository"
)

// fakeRepo is an in-memory LinkRepository for exercising the service layer
// without a database.
type fakeRepo struct {
	mu     sync.Mutex
	links  map[string]*entities.Link
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{links: make(map[string]*entities.Link)}
}

func (f *fakeRepo) Create(ctx context.Context, code, url string) (*entities.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.links[code]; exists {
		return nil, repository.ErrDuplicateCode
	}
	f.nextID++
	link := &entities.Link{
		ID:        f.nextID,
		Code:      code,
		URL:       url,
		Clicks:    0,
		CreatedAt: time.Now(),
	}
	f.links[code] = link
	cp := *link
	return &cp, nil
}

func (f *fakeRepo) FindByCode(ctx context.Context, code string) (*entities.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	link, exists := f.links[code]
	if !exists {
		return nil, repository.ErrNotFound
	}
	cp := *link
	return &cp, nil
}

func (f *fakeRepo) List(ctx context.Context) ([]*entities.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	links := make([]*entities.Link, 0, len(f.links))
	for _, link := range f.links {
		cp := *link
		links = append(links, &cp)
	}
	return links, nil
}

func (f *fakeRepo) Delete(ctx context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.links[code]; !exists {
		return repository.ErrNotFound
	}
	delete(f.links, code)
	return nil
}

func (f *fakeRepo) RecordClick(ctx context.Context, code string) (*entities.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	link, exists := f.links[code]
	if !exists {
		return nil, repository.ErrNotFound
	}
	link.Clicks++
	now := time.Now()
	link.LastClicked = &now
	cp := *link
	return &cp, nil
}

func (f *fakeRepo) Ping(ctx context.Context) error { return nil }

func TestValidateURL(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"https://example.com/path", true},
		{"http://example.com", true},
		{"ftp://x", false},
		{"not-a-url", false},
		{"", false},
		{"https://", false},
		{"//example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ValidateURL(tt.raw); got != tt.want {
				t.Errorf("ValidateURL(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestValidateCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"abcdef", true},
		{"ABCdef12", true},
		{"abc", false},
		{"abcdefghi", false},
		{"abc-def", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := ValidateCode(tt.code); got != tt.want {
				t.Errorf("ValidateCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateCode(6)
		if err != nil {
			t.Fatalf("GenerateCode failed: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 characters, got %q", code)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("generated codes are not random")
	}
}

func TestCreateLink_GeneratedCode(t *testing.T) {
	svc := NewLinkService(newFakeRepo())

	resp, err := svc.CreateLink(context.Background(), &models.CreateLinkRequest{
		URL: "https://example.com",
	}, "http://localhost:8080")
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	if !regexp.MustCompile(`^[A-Za-z0-9]{6}$`).MatchString(resp.Code) {
		t.Errorf("expected 6-char alphanumeric code, got %q", resp.Code)
	}
	if resp.Clicks != 0 {
		t.Errorf("expected 0 clicks, got %d", resp.Clicks)
	}
	if resp.ShortURL != "http://localhost:8080/"+resp.Code {
		t.Errorf("unexpected short URL %q", resp.ShortURL)
	}

	link, err := svc.GetLink(context.Background(), resp.Code)
	if err != nil {
		t.Fatalf("GetLink after create failed: %v", err)
	}
	if link.URL != "https://example.com" {
		t.Errorf("stored URL mismatch: %q", link.URL)
	}
	if link.LastClicked != nil {
		t.Error("expected last_clicked to be absent before any redirect")
	}
}

func TestCreateLink_CustomCode(t *testing.T) {
	svc := NewLinkService(newFakeRepo())

	resp, err := svc.CreateLink(context.Background(), &models.CreateLinkRequest{
		URL:        "https://example.com",
		CustomCode: "mycode1",
	}, "http://localhost:8080")
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}
	if resp.Code != "mycode1" {
		t.Errorf("expected custom code, got %q", resp.Code)
	}
}

func TestCreateLink_DuplicateCustomCode(t *testing.T) {
	svc := NewLinkService(newFakeRepo())
	ctx := context.Background()

	if _, err := svc.CreateLink(ctx, &models.CreateLinkRequest{
		URL:        "https://example.com/first",
		CustomCode: "mycode1",
	}, "http://localhost:8080"); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := svc.CreateLink(ctx, &models.CreateLinkRequest{
		URL:        "https://example.com/second",
		CustomCode: "mycode1",
	}, "http://localhost:8080")
	if !errors.Is(err, repository.ErrDuplicateCode) {
		t.Fatalf("expected ErrDuplicateCode, got %v", err)
	}

	// The existing record is unchanged
	link, err := svc.GetLink(ctx, "mycode1")
	if err != nil {
		t.Fatalf("GetLink failed: %v", err)
	}
	if link.URL != "https://example.com/first" {
		t.Errorf("existing record changed: %q", link.URL)
	}
}

func TestCreateLink_InvalidInput(t *testing.T) {
	svc := NewLinkService(newFakeRepo())
	ctx := context.Background()

	tests := []struct {
		name    string
		req     models.CreateLinkRequest
		wantErr error
	}{
		{"bad scheme", models.CreateLinkRequest{URL: "ftp://x"}, ErrInvalidURL},
		{"not a url", models.CreateLinkRequest{URL: "not-a-url"}, ErrInvalidURL},
		{"empty url", models.CreateLinkRequest{URL: ""}, ErrInvalidURL},
		{"code too short", models.CreateLinkRequest{URL: "https://example.com", CustomCode: "abc"}, ErrInvalidCode},
		{"code bad chars", models.CreateLinkRequest{URL: "https://example.com", CustomCode: "abc_def"}, ErrInvalidCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateLink(ctx, &tt.req, "http://localhost:8080")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// exhaustedRepo reports every code as taken.
type exhaustedRepo struct{ *fakeRepo }

func (e *exhaustedRepo) Create(ctx context.Context, code, url string) (*entities.Link, error) {
	return nil, repository.ErrDuplicateCode
}

func TestCreateLink_CodeSpaceExhausted(t *testing.T) {
	svc := NewLinkService(&exhaustedRepo{fakeRepo: newFakeRepo()})

	_, err := svc.CreateLink(context.Background(), &models.CreateLinkRequest{
		URL: "https://example.com",
	}, "http://localhost:8080")
	if !errors.Is(err, ErrCodeSpaceExhausted) {
		t.Fatalf("expected ErrCodeSpaceExhausted, got %v", err)
	}
}

func TestResolveClick_NotFound(t *testing.T) {
	repo := newFakeRepo()
	svc := NewLinkService(repo)

	_, err := svc.ResolveClick(context.Background(), "zzzzzz")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(repo.links) != 0 {
		t.Error("not-found resolve must not write anything")
	}
}

func TestResolveClick_SequentialIncrements(t *testing.T) {
	svc := NewLinkService(newFakeRepo())
	ctx := context.Background()

	resp, err := svc.CreateLink(ctx, &models.CreateLinkRequest{URL: "https://example.com"}, "http://localhost:8080")
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	const n = 5
	for i := 0; i < n; i++ {
		if _, err := svc.ResolveClick(ctx, resp.Code); err != nil {
			t.Fatalf("ResolveClick failed: %v", err)
		}
	}

	link, err := svc.GetLink(ctx, resp.Code)
	if err != nil {
		t.Fatalf("GetLink failed: %v", err)
	}
	if link.Clicks != n {
		t.Errorf("expected %d clicks, got %d", n, link.Clicks)
	}
	if link.LastClicked == nil {
		t.Error("expected last_clicked to be set after redirects")
	}
}

func TestResolveClick_ConcurrentIncrements(t *testing.T) {
	svc := NewLinkService(newFakeRepo())
	ctx := context.Background()

	resp, err := svc.CreateLink(ctx, &models.CreateLinkRequest{URL: "https://example.com"}, "http://localhost:8080")
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	const n = 50
	var wg sync.WaitGroup
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ResolveClick(ctx, resp.Code); err != nil {
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("concurrent ResolveClick failed: %v", err)
	}

	link, err := svc.GetLink(ctx, resp.Code)
	if err != nil {
		t.Fatalf("GetLink failed: %v", err)
	}
	if link.Clicks != n {
		t.Errorf("expected exactly %d clicks (no lost updates), got %d", n, link.Clicks)
	}
}

func TestDeleteLink(t *testing.T) {
	svc := NewLinkService(newFakeRepo())
	ctx := context.Background()

	resp, err := svc.CreateLink(ctx, &models.CreateLinkRequest{URL: "https://example.com"}, "http://localhost:8080")
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	if err := svc.DeleteLink(ctx, resp.Code); err != nil {
		t.Fatalf("DeleteLink failed: %v", err)
	}
	if _, err := svc.GetLink(ctx, resp.Code); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.DeleteLink(ctx, resp.Code); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
