package clientes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/JaimeStill/clientes/pkg/pagination"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// journal records collaborator calls in order across fakes.
type journal struct {
	mu     sync.Mutex
	events []string
}

func (j *journal) add(format string, args ...any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, fmt.Sprintf(format, args...))
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.events)
}

type memRepo struct {
	mu        sync.Mutex
	byKey     map[string]Cliente
	journal   *journal
	createErr error
	updateErr error
	finds     int
}

func newMemRepo(j *journal) *memRepo {
	return &memRepo{byKey: make(map[string]Cliente), journal: j}
}

func (r *memRepo) Create(_ context.Context, c Cliente) (Cliente, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.journal.add("repo.create %s", c.Key)
	if r.createErr != nil {
		return Cliente{}, r.createErr
	}
	if _, ok := r.byKey[c.Key]; ok {
		return Cliente{}, ErrAlreadyExists
	}
	r.byKey[c.Key] = c
	return c, nil
}

func (r *memRepo) FindByKey(_ context.Context, key string) (Cliente, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	r.journal.add("repo.find %s", key)
	c, ok := r.byKey[key]
	if !ok {
		return Cliente{}, ErrNotFound
	}
	return c, nil
}

func (r *memRepo) DeleteByKey(_ context.Context, key string) (Cliente, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.journal.add("repo.delete %s", key)
	c, ok := r.byKey[key]
	if !ok {
		return Cliente{}, ErrNotFound
	}
	delete(r.byKey, key)
	return c, nil
}

func (r *memRepo) Update(_ context.Context, key string, ch Changes) (Cliente, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.journal.add("repo.update %s", key)
	if r.updateErr != nil {
		return Cliente{}, r.updateErr
	}
	c, ok := r.byKey[key]
	if !ok {
		return Cliente{}, ErrNotFound
	}
	if ch.Name != nil {
		c.Name = *ch.Name
	}
	if ch.Phone != nil {
		c.Phone = *ch.Phone
	}
	if ch.Email != nil {
		c.Email = *ch.Email
	}
	if ch.Icon != nil {
		c.Icon = *ch.Icon
	}
	c.UpdatedAt = ch.UpdatedAt
	r.byKey[key] = c
	return c, nil
}

func (r *memRepo) sorted() []Cliente {
	all := make([]Cliente, 0, len(r.byKey))
	for _, c := range r.byKey {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Key < all[j].Key })
	return all
}

func (r *memRepo) Page(_ context.Context, page, size int) ([]Cliente, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted()
	start := min(pagination.Offset(page, size), len(all))
	end := min(start+size, len(all))
	return all[start:end], pagination.CountOnPage(len(all), page, size), nil
}

func (r *memRepo) TotalPages(_ context.Context, size int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return pagination.TotalPages(len(r.byKey), size), nil
}

type fakeBlobs struct {
	mu        sync.Mutex
	journal   *journal
	objects   map[string][]byte
	uploads   int
	deletes   []string
	uploadErr error
	deleteErr error
	seq       int
}

func newFakeBlobs(j *journal) *fakeBlobs {
	return &fakeBlobs{journal: j, objects: make(map[string][]byte)}
}

func (b *fakeBlobs) Upload(_ context.Context, data []byte, mimeType, name string) (FileRef, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploads++
	b.journal.add("blob.upload %s", name)
	if b.uploadErr != nil {
		return FileRef{}, b.uploadErr
	}
	b.seq++
	id := fmt.Sprintf("%s-%d", name, b.seq)
	b.objects[id] = data
	return FileRef{FileID: id, URL: "https://blobs.test/icons/" + id}, nil
}

func (b *fakeBlobs) Delete(_ context.Context, fileID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes = append(b.deletes, fileID)
	b.journal.add("blob.delete %s", fileID)
	if b.deleteErr != nil {
		return false, b.deleteErr
	}
	_, ok := b.objects[fileID]
	delete(b.objects, fileID)
	return ok, nil
}

func (b *fakeBlobs) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uploads + len(b.deletes)
}

var errBoom = errors.New("boom")

// pngBytes is a minimal PNG header, enough for content sniffing.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
