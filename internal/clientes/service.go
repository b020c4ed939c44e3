package clientes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/clientes/pkg/pagination"
)

type service struct {
	repo     Repository
	source   Repository
	blobs    BlobStore
	resolver *Resolver
	logger   *slog.Logger
	now      func() time.Time
}

// New creates the cliente System over the given repository and blob store.
func New(repo Repository, blobs BlobStore, logger *slog.Logger) System {
	return &service{
		repo:     repo,
		source:   uncached(repo),
		blobs:    blobs,
		resolver: NewResolver(blobs),
		logger:   logger.With("system", "clientes"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Handler(maxUploadSize int64) *Handler {
	return NewHandler(s, s.logger, maxUploadSize)
}

func (s *service) Create(ctx context.Context, cmd CreateCommand) (*Cliente, error) {
	key, err := ValidateKey(cmd.Key)
	if err != nil {
		return nil, err
	}
	name, err := ValidateName(cmd.Name)
	if err != nil {
		return nil, err
	}
	phone, err := ValidatePhone(cmd.Phone)
	if err != nil {
		return nil, err
	}
	email, err := ValidateEmail(cmd.Email)
	if err != nil {
		return nil, err
	}
	parsed, err := ParseIcon(cmd.Icon)
	if err != nil {
		return nil, err
	}

	if _, err := s.source.FindByKey(ctx, key); err == nil {
		return nil, alreadyExists(key)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, dependency("find cliente", err)
	}

	icon, err := s.resolver.Complete(ctx, parsed, key)
	if err != nil {
		return nil, err
	}

	now := s.now()
	c, err := s.repo.Create(ctx, Cliente{
		ID:        uuid.New(),
		Key:       key,
		Name:      name,
		Phone:     phone,
		Email:     email,
		Icon:      icon,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.release(ctx, icon, "compensating blob delete failed")
		if errors.Is(err, ErrConflict) {
			return nil, alreadyExists(key)
		}
		return nil, dependency("create cliente", err)
	}

	s.logger.Info("cliente created", "key", c.Key, "icon", c.Icon.Kind())
	return &c, nil
}

func (s *service) Get(ctx context.Context, key string) (*Cliente, error) {
	key, err := ValidateKey(key)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notExists(key)
		}
		return nil, dependency("find cliente", err)
	}

	return &c, nil
}

func (s *service) Update(ctx context.Context, cmd UpdateCommand) (*Cliente, error) {
	key, err := ValidateKey(cmd.Key)
	if err != nil {
		return nil, err
	}

	ch, err := buildChanges(cmd)
	if err != nil {
		return nil, err
	}

	var parsed *ParsedIcon
	if present(cmd.Icon) {
		p, err := ParseIcon(cmd.Icon)
		if err != nil {
			return nil, err
		}
		parsed = &p
	}

	existing, err := s.source.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notExists(key)
		}
		return nil, dependency("find cliente", err)
	}

	if parsed != nil {
		if existing.Icon.Kind() == IconFile {
			if _, err := s.blobs.Delete(ctx, existing.Icon.File().FileID); err != nil {
				return nil, dependency("delete previous icon", err)
			}
		}

		icon, err := s.resolver.Complete(ctx, *parsed, key)
		if err != nil {
			return nil, err
		}
		ch.Icon = &icon
	}

	ch.UpdatedAt = s.now()

	c, err := s.repo.Update(ctx, key, ch)
	if err != nil {
		if ch.Icon != nil {
			s.release(ctx, *ch.Icon, "compensating blob delete failed")
		}
		if errors.Is(err, ErrNotFound) {
			return nil, notExists(key)
		}
		if errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("%w: key %s", ErrConflict, key)
		}
		return nil, dependency("update cliente", err)
	}

	s.logger.Info("cliente updated", "key", c.Key)
	return &c, nil
}

func (s *service) Delete(ctx context.Context, key string) (*Deleted, error) {
	key, err := ValidateKey(key)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.DeleteByKey(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notExists(key)
		}
		return nil, dependency("delete cliente", err)
	}

	if c.Icon.Kind() == IconFile {
		fileID := c.Icon.File().FileID
		found, err := s.blobs.Delete(ctx, fileID)
		if err != nil {
			return nil, dependency("delete icon", err)
		}
		if !found {
			s.logger.Warn("icon blob already gone", "key", key, "file_id", fileID)
		}
	}

	s.logger.Info("cliente deleted", "key", key)
	return &Deleted{
		Message: fmt.Sprintf("Cliente con clave %s eliminado correctamente.", key),
		Cliente: c,
	}, nil
}

func (s *service) Page(ctx context.Context, page int) (*PageResult, error) {
	totalPages, err := s.repo.TotalPages(ctx, PageSize)
	if err != nil {
		return nil, dependency("count clientes", err)
	}

	if _, err := ValidatePage(page, totalPages); err != nil {
		return nil, err
	}

	items, count, err := s.repo.Page(ctx, page, PageSize)
	if err != nil {
		return nil, dependency("query clientes", err)
	}

	result := pagination.NewPageResult(items, count, page, totalPages)
	return &result, nil
}

// uncached unwraps read-through decorators so existence and icon ownership
// are decided against the store itself.
func uncached(repo Repository) Repository {
	for {
		u, ok := repo.(interface{ Unwrap() Repository })
		if !ok {
			return repo
		}
		repo = u.Unwrap()
	}
}

// release deletes a file-backed icon, logging instead of failing.
func (s *service) release(ctx context.Context, icon Icon, msg string) {
	if icon.Kind() != IconFile {
		return
	}
	fileID := icon.File().FileID
	if _, err := s.blobs.Delete(ctx, fileID); err != nil {
		s.logger.Warn(msg, "file_id", fileID, "error", err)
	}
}

// buildChanges validates every supplied field. Blank strings count as absent.
func buildChanges(cmd UpdateCommand) (Changes, error) {
	var ch Changes

	if v, ok := supplied(cmd.Name); ok {
		name, err := ValidateName(v)
		if err != nil {
			return Changes{}, err
		}
		ch.Name = &name
	}
	if v, ok := supplied(cmd.Phone); ok {
		phone, err := ValidatePhone(v)
		if err != nil {
			return Changes{}, err
		}
		ch.Phone = &phone
	}
	if v, ok := supplied(cmd.Email); ok {
		email, err := ValidateEmail(v)
		if err != nil {
			return Changes{}, err
		}
		ch.Email = &email
	}

	return ch, nil
}

func supplied(v *string) (string, bool) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", false
	}
	return *v, true
}

func present(raw RawIcon) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case IconText:
		return strings.TrimSpace(string(v)) != ""
	case *IconUpload:
		return v != nil
	default:
		return true
	}
}
