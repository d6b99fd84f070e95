package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/prankitapotbhare/TinyLink/internal/entities"
	"github.com/prankitapotbhare/TinyLink/internal/models"
	"github.com/prankitapotbhare/TinyLink/internal/repository"
)

var (
	ErrInvalidURL         = errors.New("url must be an absolute http or https URL")
	ErrInvalidCode        = errors.New("custom code must be 6-8 alphanumeric characters")
	ErrCodeSpaceExhausted = errors.New("failed to generate a unique short code")
)

const (
	codeAlphabet        = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	generatedCodeLength = 6
	maxGenerateRetries  = 5
)

var customCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{6,8}$`)

// LinkService defines the interface for link business logic
type LinkService interface {
	CreateLink(ctx context.Context, req *models.CreateLinkRequest, baseURL string) (*models.CreateLinkResponse, error)
	GetLink(ctx context.Context, code string) (*entities.Link, error)
	ListLinks(ctx context.Context) ([]*entities.Link, error)
	DeleteLink(ctx context.Context, code string) error
	ResolveClick(ctx context.Context, code string) (*entities.Link, error)
}

type linkService struct {
	repo repository.LinkRepository
}

// NewLinkService creates a new link service
func NewLinkService(repo repository.LinkRepository) LinkService {
	return &linkService{repo: repo}
}

// ValidateURL reports whether raw is an absolute URL with an http or https scheme
func ValidateURL(raw string) bool {
	u, err := url.ParseRequestURI(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// ValidateCode reports whether code is a valid caller-supplied short code
func ValidateCode(code string) bool {
	return customCodePattern.MatchString(code)
}

// GenerateCode returns a random short code of the given length drawn from the
// upper+lower alphanumeric alphabet
func GenerateCode(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	for i, b := range bytes {
		bytes[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(bytes), nil
}

// CreateLink validates the request and inserts a new link. A supplied custom
// code is used as-is after format and uniqueness checks; otherwise a random
// 6-character code is generated, retrying a bounded number of times on
// collision before giving up with ErrCodeSpaceExhausted.
func (s *linkService) CreateLink(ctx context.Context, req *models.CreateLinkRequest, baseURL string) (*models.CreateLinkResponse, error) {
	if !ValidateURL(req.URL) {
		return nil, ErrInvalidURL
	}

	var link *entities.Link

	if customCode := strings.TrimSpace(req.CustomCode); customCode != "" {
		if !ValidateCode(customCode) {
			return nil, ErrInvalidCode
		}
		created, err := s.repo.Create(ctx, customCode, req.URL)
		if err != nil {
			return nil, err
		}
		link = created
	} else {
		// The unique constraint arbitrates collisions; a duplicate insert is
		// retried with a fresh code. With 62^6 codes the retry cap is never
		// reached in practice.
		backoff := retry.WithMaxRetries(maxGenerateRetries, retry.NewConstant(time.Millisecond))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			code, err := GenerateCode(generatedCodeLength)
			if err != nil {
				return err
			}
			created, err := s.repo.Create(ctx, code, req.URL)
			if errors.Is(err, repository.ErrDuplicateCode) {
				return retry.RetryableError(err)
			}
			if err != nil {
				return err
			}
			link = created
			return nil
		})
		if errors.Is(err, repository.ErrDuplicateCode) {
			return nil, ErrCodeSpaceExhausted
		}
		if err != nil {
			return nil, err
		}
	}

	return &models.CreateLinkResponse{
		Code:      link.Code,
		URL:       link.URL,
		ShortURL:  fmt.Sprintf("%s/%s", strings.TrimRight(baseURL, "/"), link.Code),
		Clicks:    link.Clicks,
		CreatedAt: link.CreatedAt,
	}, nil
}

// GetLink retrieves a single link by code
func (s *linkService) GetLink(ctx context.Context, code string) (*entities.Link, error) {
	return s.repo.FindByCode(ctx, code)
}

// ListLinks returns all links, newest first
func (s *linkService) ListLinks(ctx context.Context) ([]*entities.Link, error) {
	return s.repo.List(ctx)
}

// DeleteLink removes a link by code
func (s *linkService) DeleteLink(ctx context.Context, code string) error {
	return s.repo.Delete(ctx, code)
}

// ResolveClick resolves a short code for redirecting, counting the click and
// stamping last_clicked as one atomic unit. An unknown code performs no write.
func (s *linkService) ResolveClick(ctx context.Context, code string) (*entities.Link, error) {
	return s.repo.RecordClick(ctx, code)
}
