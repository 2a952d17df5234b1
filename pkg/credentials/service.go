// Package credentials manages the per-user profile collections: education,
// experience, licenses and certifications (with an uploaded file), projects and skills.
package credentials

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aretw0/mentorai/internal/logging"
	"github.com/aretw0/mentorai/pkg/domain"
	"github.com/aretw0/mentorai/pkg/ports"
)

// Bucket holds uploaded certificate files.
const Bucket = "cert"

// File is an uploaded certificate.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Stores groups the collections the service works on.
type Stores struct {
	Education      ports.Collection[domain.Education]
	Experiences    ports.Collection[domain.Experience]
	Certifications ports.Collection[domain.Certification]
	Projects       ports.Lister[domain.Project]
	Skills         ports.Lister[domain.Skill]
	Files          ports.ObjectStorage
}

// Service validates and stores credential rows.
type Service struct {
	stores Stores
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger configures a logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides time.Now, used for upload paths.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service.
func NewService(stores Stores, opts ...Option) *Service {
	s := &Service{stores: stores, logger: logging.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stores returns the collections behind the service.
func (s *Service) Stores() Stores { return s.stores }

func insert[T domain.Record](ctx context.Context, col ports.Collection[T], rec T, validate func() error) (T, error) {
	if err := validate(); err != nil {
		var zero T
		return zero, domain.WithNotice(err, domain.Warning("Missing required fields", err.Error()))
	}
	return col.Insert(ctx, rec)
}

// ListEducation returns userID's education rows.
func (s *Service) ListEducation(ctx context.Context, userID string) ([]domain.Education, error) {
	return s.stores.Education.List(ctx, userID)
}

// AddEducation stores e for userID.
func (s *Service) AddEducation(ctx context.Context, userID string, e domain.Education) (domain.Education, error) {
	e.ID, e.UserID = "", userID
	return insert(ctx, s.stores.Education, e, e.Validate)
}

// DeleteEducation removes one education row.
func (s *Service) DeleteEducation(ctx context.Context, userID, id string) error {
	return s.stores.Education.Delete(ctx, userID, id)
}

// ListExperiences returns userID's experience rows.
func (s *Service) ListExperiences(ctx context.Context, userID string) ([]domain.Experience, error) {
	return s.stores.Experiences.List(ctx, userID)
}

// AddExperience stores e for userID. A current position has no end date.
func (s *Service) AddExperience(ctx context.Context, userID string, e domain.Experience) (domain.Experience, error) {
	e.ID, e.UserID = "", userID
	if e.Current {
		e.EndDate = ""
	}
	return insert(ctx, s.stores.Experiences, e, e.Validate)
}

// DeleteExperience removes one experience row.
func (s *Service) DeleteExperience(ctx context.Context, userID, id string) error {
	return s.stores.Experiences.Delete(ctx, userID, id)
}

// ListCertifications returns userID's certifications.
func (s *Service) ListCertifications(ctx context.Context, userID string) ([]domain.Certification, error) {
	return s.stores.Certifications.List(ctx, userID)
}

// AddCertification uploads file (when given) and stores c pointing at it. If the
// row cannot be stored the uploaded file is removed again.
func (s *Service) AddCertification(ctx context.Context, userID string, c domain.Certification, file *File) (domain.Certification, error) {
	c.ID, c.UserID, c.FileURL, c.FilePath = "", userID, "", ""
	if err := c.Validate(); err != nil {
		return domain.Certification{}, domain.WithNotice(err, domain.Warning("Missing required fields", err.Error()))
	}

	if file != nil && file.Body != nil {
		p := UploadPath(userID, file.Name, s.now())
		if err := s.stores.Files.Upload(ctx, Bucket, p, file.ContentType, file.Body); err != nil {
			s.logger.ErrorContext(ctx, "Error uploading file", "path", p, "err", err)
			return domain.Certification{}, fmt.Errorf("upload certificate: %w", err)
		}
		c.FilePath = p
		c.FileURL = s.stores.Files.PublicURL(Bucket, p)
	}

	saved, err := s.stores.Certifications.Insert(ctx, c)
	if err != nil {
		if c.FilePath != "" {
			if rerr := s.stores.Files.Remove(ctx, Bucket, c.FilePath); rerr != nil {
				s.logger.WarnContext(ctx, "Orphaned certificate file", "path", c.FilePath, "err", rerr)
			}
		}
		return domain.Certification{}, fmt.Errorf("insert certification: %w", err)
	}
	return saved, nil
}

// DeleteCertification removes the stored file and then the row. A failed file
// removal is logged and does not keep the row.
func (s *Service) DeleteCertification(ctx context.Context, userID, id string) error {
	c, err := s.stores.Certifications.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if c.FilePath != "" {
		if err := s.stores.Files.Remove(ctx, Bucket, c.FilePath); err != nil {
			s.logger.ErrorContext(ctx, "Error deleting file from storage", "path", c.FilePath, "err", err)
		}
	}
	return s.stores.Certifications.Delete(ctx, userID, id)
}

// ListProjects returns userID's projects.
func (s *Service) ListProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	return s.stores.Projects.List(ctx, userID)
}

// ListSkills returns userID's skills.
func (s *Service) ListSkills(ctx context.Context, userID string) ([]domain.Skill, error) {
	return s.stores.Skills.List(ctx, userID)
}

// UploadPath is certifications/{userID}/{unix millis}_{base name}.
func UploadPath(userID, name string, at time.Time) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		base = "file"
	}
	return fmt.Sprintf("certifications/%s/%d_%s", userID, at.UnixMilli(), base)
}
