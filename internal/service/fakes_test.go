package service_test

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/infra/observability"
	"github.com/zaeom/storefront-bfa-go/internal/port"

	"go.uber.org/zap"
)

// ============================================================
// Hand-written port fakes shared by the service tests
// ============================================================

func testDeps() (*observability.Metrics, *zap.Logger) {
	return observability.NewMetrics(), zap.NewNop()
}

var (
	master  = domain.Actor{UserID: "u-master", Email: "owner@shop.io", Role: domain.RoleMaster, Token: "tok-master"}
	admin   = domain.Actor{UserID: "u-admin", Email: "admin@shop.io", Role: domain.RoleAdmin, Token: "tok-admin"}
	seller  = domain.Actor{UserID: "u-seller", Email: "seller@shop.io", Role: domain.RoleSeller, Token: "tok-seller"}
	visitor = domain.Actor{UserID: "u-visitor", Email: "visitor@shop.io", Role: domain.RoleVisitor, Token: "tok-visitor"}
)

const masterEmail = "owner@shop.io"

// --- Ads ---

type fakeAdStore struct {
	mu      sync.Mutex
	ads     map[string]*domain.Ad
	nextID  int
	calls   []string
	failOn  string
	listArg [2]any
}

func newFakeAdStore(ads ...domain.Ad) *fakeAdStore {
	s := &fakeAdStore{ads: map[string]*domain.Ad{}}
	for i := range ads {
		ad := ads[i]
		s.ads[ad.ID] = &ad
	}
	return s
}

func (s *fakeAdStore) record(call string) error {
	s.calls = append(s.calls, call)
	if s.failOn == call {
		return &domain.ErrExternalService{Service: "ads", Err: fmt.Errorf("%s failed", call)}
	}
	return nil
}

func (s *fakeAdStore) ListAds(_ context.Context, activeOnly bool, limit int) ([]domain.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listArg = [2]any{activeOnly, limit}
	if err := s.record("list"); err != nil {
		return nil, err
	}
	out := []domain.Ad{}
	for _, ad := range s.ads {
		if activeOnly && !ad.IsActive {
			continue
		}
		out = append(out, *ad)
	}
	return out, nil
}

func (s *fakeAdStore) GetAd(_ context.Context, id string) (*domain.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("get"); err != nil {
		return nil, err
	}
	ad, ok := s.ads[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "ad", ID: id}
	}
	found := *ad
	return &found, nil
}

func (s *fakeAdStore) CreateAd(_ context.Context, ad *domain.Ad) (*domain.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("create"); err != nil {
		return nil, err
	}
	s.nextID++
	created := *ad
	created.ID = fmt.Sprintf("ad-new-%d", s.nextID)
	s.ads[created.ID] = &created
	return &created, nil
}

func (s *fakeAdStore) UpdateAd(_ context.Context, ad *domain.Ad) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("update"); err != nil {
		return err
	}
	if _, ok := s.ads[ad.ID]; !ok {
		return &domain.ErrNotFound{Resource: "ad", ID: ad.ID}
	}
	updated := *ad
	s.ads[ad.ID] = &updated
	return nil
}

func (s *fakeAdStore) DeleteAd(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("delete"); err != nil {
		return err
	}
	delete(s.ads, id)
	return nil
}

func (s *fakeAdStore) DeactivateAdsInPosition(_ context.Context, position domain.AdPosition, exceptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("deactivate"); err != nil {
		return err
	}
	for id, ad := range s.ads {
		if ad.Position == position && id != exceptID {
			ad.IsActive = false
		}
	}
	return nil
}

// --- Profiles ---

type fakeProfileStore struct {
	mu         sync.Mutex
	profiles   map[string]*domain.Profile
	gets       int
	tokens     []string
	lists      int
	updates    []string
	failUpdate bool
	hidden     map[string]bool
}

func newFakeProfileStore(profiles ...domain.Profile) *fakeProfileStore {
	s := &fakeProfileStore{profiles: map[string]*domain.Profile{}}
	for i := range profiles {
		p := profiles[i]
		s.profiles[p.ID] = &p
	}
	return s
}

func (s *fakeProfileStore) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	s.tokens = append(s.tokens, port.AccessToken(ctx))
	p, ok := s.profiles[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: id}
	}
	cp := *p
	return &cp, nil
}

func (s *fakeProfileStore) ListProfiles(_ context.Context) ([]domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	out := make([]domain.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (s *fakeProfileStore) UpdateRole(_ context.Context, id string, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, id+"="+role.String())
	if s.failUpdate {
		return &domain.ErrExternalService{Service: "profiles", Err: io.ErrUnexpectedEOF}
	}
	if s.hidden[id] {
		return &domain.ErrNotFound{Resource: "profile", ID: id}
	}
	s.profiles[id].Role = role
	return nil
}

func (s *fakeProfileStore) role(id string) domain.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles[id].Role
}

// --- Products ---

type fakeProductStore struct {
	mu        sync.Mutex
	products  []domain.Product
	queries   []domain.ProductQuery
	created   []*domain.Product
	updated   []*domain.Product
	deleted   [][]string
	activated map[string]bool
}

func (s *fakeProductStore) QueryProducts(_ context.Context, q domain.ProductQuery) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	out := []domain.Product{}
	for _, p := range s.products {
		if matches(q, p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeProductStore) CreateProduct(_ context.Context, p *domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, p)
	cp := *p
	cp.ID = "p-new"
	return &cp, nil
}

func (s *fakeProductStore) UpdateProduct(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, p)
	return nil
}

func (s *fakeProductStore) DeleteProducts(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, ids)
	return nil
}

func (s *fakeProductStore) SetProductsActive(_ context.Context, ids []string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activated == nil {
		s.activated = map[string]bool{}
	}
	for _, id := range ids {
		s.activated[id] = active
	}
	return nil
}

func (s *fakeProductStore) lastQuery() domain.ProductQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[len(s.queries)-1]
}

// --- Categories ---

type fakeCategoryStore struct {
	mu         sync.Mutex
	categories []domain.Category
	lists      int
	slugLooks  int
	created    []*domain.Category
	updated    []*domain.Category
	deleted    []string
}

func (s *fakeCategoryStore) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	return append([]domain.Category(nil), s.categories...), nil
}

func (s *fakeCategoryStore) GetCategoryBySlug(_ context.Context, slug string) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slugLooks++
	for _, c := range s.categories {
		if c.Slug == slug {
			cp := c
			return &cp, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "category", ID: slug}
}

func (s *fakeCategoryStore) ListChildCategories(_ context.Context, parentID string) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Category
	for _, c := range s.categories {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeCategoryStore) CreateCategory(_ context.Context, c *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, c)
	cp := *c
	cp.ID = "c-new"
	s.categories = append(s.categories, cp)
	return &cp, nil
}

func (s *fakeCategoryStore) UpdateCategory(_ context.Context, c *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, c)
	return nil
}

func (s *fakeCategoryStore) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return nil
}

// --- Settings ---

type fakeSettingsStore struct {
	mu      sync.Mutex
	current domain.SiteSettings
	gets    int
	saved   []domain.SiteSettings
}

func (s *fakeSettingsStore) GetSettings(_ context.Context) (*domain.SiteSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	cp := s.current
	return &cp, nil
}

func (s *fakeSettingsStore) UpdateSettings(_ context.Context, settings *domain.SiteSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, *settings)
	s.current = *settings
	return nil
}

// --- Invites ---

type fakeInviter struct {
	token string
	req   *domain.InviteRequest
	calls int
}

func (f *fakeInviter) Invite(_ context.Context, accessToken string, req *domain.InviteRequest) (*domain.InviteResult, error) {
	f.calls++
	f.token = accessToken
	f.req = req
	return &domain.InviteResult{UserID: "u-invited"}, nil
}

// --- Auth ---

type fakeAuthGateway struct {
	signInErr   error
	user        domain.AuthUser
	resetEmail  string
	resetTarget string
	newPassword string
	tokens      []string
}

func (g *fakeAuthGateway) SignInWithPassword(_ context.Context, email, _ string) (*domain.Session, error) {
	if g.signInErr != nil {
		return nil, g.signInErr
	}
	return &domain.Session{AccessToken: "access", User: domain.AuthUser{ID: "u-1", Email: email}}, nil
}

func (g *fakeAuthGateway) SignOut(_ context.Context, accessToken string) error {
	g.tokens = append(g.tokens, accessToken)
	return nil
}

func (g *fakeAuthGateway) GetUser(_ context.Context, accessToken string) (*domain.AuthUser, error) {
	g.tokens = append(g.tokens, accessToken)
	u := g.user
	return &u, nil
}

func (g *fakeAuthGateway) UpdatePassword(_ context.Context, accessToken, password string) error {
	g.tokens = append(g.tokens, accessToken)
	g.newPassword = password
	return nil
}

func (g *fakeAuthGateway) ResetPasswordForEmail(_ context.Context, email, redirectTo string) error {
	g.resetEmail = email
	g.resetTarget = redirectTo
	return nil
}

// --- Storage ---

type fakeStorage struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentType  string
	cacheControl time.Duration
}

func (s *fakeStorage) Upload(_ context.Context, objectPath, contentType string, body io.Reader, cacheControl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[objectPath] = data
	s.contentType = contentType
	s.cacheControl = cacheControl
	return nil
}

func (s *fakeStorage) PublicURL(objectPath string) string {
	return "https://cdn.test/" + objectPath
}

// matches evaluates q in memory the way the backend filters rows.
func matches(q domain.ProductQuery, p domain.Product) bool {
	if q.ActiveOnly && !p.IsActive {
		return false
	}
	if q.ID != "" && p.ID != q.ID {
		return false
	}
	if q.CategoryIDs != nil && (p.CategoryID == nil || !slices.Contains(q.CategoryIDs, *p.CategoryID)) {
		return false
	}
	return q.TitleContains == "" || strings.Contains(strings.ToLower(p.Title), strings.ToLower(q.TitleContains))
}
