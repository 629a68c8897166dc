package flow

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/capitanshop/shopbot/internal/broadcast"
	"github.com/capitanshop/shopbot/internal/catalog"
	"github.com/capitanshop/shopbot/internal/chat"
)

var errStore = errors.New("store unavailable")

type fakeCatalog struct {
	mu       sync.Mutex
	products map[int64]catalog.Product
	nextID   int64
	failAdd  bool
	failRead bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{products: map[int64]catalog.Product{}, nextID: 1}
}

func (f *fakeCatalog) Add(_ context.Context, p catalog.NewProduct) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAdd {
		return 0, errStore
	}
	if err := p.Validate(); err != nil {
		return 0, err
	}
	id := f.nextID
	f.nextID++
	f.products[id] = catalog.Product{ID: id, Name: p.Name, Description: p.Description, Price: p.Price, ImageURL: p.ImageURL, IsAvailable: p.IsAvailable}
	return id, nil
}

func (f *fakeCatalog) Edit(_ context.Context, id int64, patch catalog.Patch) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return false, nil
	}
	if patch.IsAvailable != nil {
		p.IsAvailable = *patch.IsAvailable
	}
	f.products[id] = p
	return true, nil
}

func (f *fakeCatalog) Delete(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return false, nil
	}
	delete(f.products, id)
	return true, nil
}

func (f *fakeCatalog) GetByID(_ context.Context, id int64) (*catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRead {
		return nil, errStore
	}
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeCatalog) sorted(keep func(catalog.Product) bool) ([]catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRead {
		return nil, errStore
	}
	out := []catalog.Product{}
	for _, p := range f.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCatalog) ListAll(context.Context, int) ([]catalog.Product, error) {
	return f.sorted(func(catalog.Product) bool { return true })
}

func (f *fakeCatalog) ListByAvailability(_ context.Context, available bool) ([]catalog.Product, error) {
	return f.sorted(func(p catalog.Product) bool { return p.IsAvailable == available })
}

func (f *fakeCatalog) SearchByName(_ context.Context, s string) ([]catalog.Product, error) {
	return f.sorted(func(p catalog.Product) bool { return containsLiteral(p.Name, s) })
}

func (f *fakeCatalog) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.products), nil
}

func containsLiteral(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

type fakeUsers struct {
	mu      sync.Mutex
	ids     map[int64]bool
	actions []string
	fail    bool
}

func (f *fakeUsers) Save(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errStore
	}
	f.ids[id] = true
	return nil
}

func (f *fakeUsers) All(context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errStore
	}
	out := []int64{}
	for id := range f.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (f *fakeUsers) SaveAction(ctx context.Context, id int64, label string) error {
	if err := f.Save(ctx, id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, label)
	return nil
}

func (f *fakeUsers) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ids), nil
}

type fakeMedia struct {
	fail bool
}

func (f fakeMedia) Save(_ context.Context, a chat.Attachment) (string, error) {
	if f.fail {
		return "", errStore
	}
	return "tg:" + a.FileID, nil
}

type fakeBroadcaster struct {
	replies []chat.Reply
	fail    bool
}

func (f *fakeBroadcaster) Broadcast(_ context.Context, _ string, r chat.Reply) (*broadcast.Delivery, error) {
	if f.fail {
		return nil, errStore
	}
	f.replies = append(f.replies, r)
	return &broadcast.Delivery{}, nil
}

type recorder struct {
	replies   []chat.Reply
	notices   []string
	failPhoto bool
}

func (r *recorder) Send(_ context.Context, reply chat.Reply) error {
	if r.failPhoto && reply.Photo != "" {
		return errors.New("wrong file identifier")
	}
	r.replies = append(r.replies, reply)
	return nil
}

func (r *recorder) Notify(_ context.Context, text string) error {
	r.notices = append(r.notices, text)
	return nil
}

func (r *recorder) texts() []string {
	out := make([]string, 0, len(r.replies))
	for _, reply := range r.replies {
		out = append(out, reply.Text)
	}
	return out
}

func (r *recorder) last() chat.Reply {
	if len(r.replies) == 0 {
		return chat.Reply{}
	}
	return r.replies[len(r.replies)-1]
}
