package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ulk-sapr/equipment-api/internal/models"
	"github.com/ulk-sapr/equipment-api/internal/repository"
	"github.com/ulk-sapr/equipment-api/pkg/config"
	appErrors "github.com/ulk-sapr/equipment-api/pkg/errors"
)

// fakeStore keeps the lending schema in memory so services can be exercised
// together against consistent state.
type fakeStore struct {
	mu       sync.Mutex
	statuses map[repository.StatusTable][]models.Status
	users    map[int64]*models.User
	access   []models.UserAccess
	rooms    map[int64]models.Room
	hardware map[int64]string
	places   map[int64]string
	items    []*models.Item
	requests []*models.Request
	nextID   int64
	writeErr error
	calls    map[string]int
	// afterListStudents runs once the student rows have been read, outside the lock.
	afterListStudents func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		statuses: map[repository.StatusTable][]models.Status{
			repository.TableItemStatus:    {{ID: 1, Name: models.ItemStatusAvailable}, {ID: 2, Name: models.ItemStatusCheckedOut}, {ID: 3, Name: "broken"}},
			repository.TableRequestStatus: {{ID: 10, Name: models.RequestStatusActive}, {ID: 11, Name: models.RequestStatusClosed}},
			repository.TableUserType:      {{ID: 20, Name: "admin"}, {ID: 21, Name: models.UserTypeStudent}},
		},
		users:    map[int64]*models.User{1: {ID: 1, Name: "Admin", UserType: 20, Active: true}},
		rooms:    map[int64]models.Room{1: {ID: 1, Name: "Lab 101"}, 2: {ID: 2, Name: "Lab 102"}},
		hardware: map[int64]string{1: "Oscilloscope", 2: "Multimeter"},
		places:   map[int64]string{1: "Shelf A"},
		nextID:   100,
		calls:    map[string]int{},
	}
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) statusName(table repository.StatusTable, id int64) string {
	for _, st := range s.statuses[table] {
		if st.ID == id {
			return st.Name
		}
	}
	return ""
}

func (s *fakeStore) item(key string) *models.Item {
	for _, it := range s.items {
		if it.InvKey == key {
			return it
		}
	}
	return nil
}

func (s *fakeStore) addStudent(name, card string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.users[id] = &models.User{ID: id, Name: name, CardID: card, UserType: 21, Active: true, Created: time.Now()}
	return id
}

func (s *fakeStore) addItem(key string) *models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := &models.Item{ID: s.id(), InvKey: key, Hardware: 1, Status: 1, Owner: "ULK", Place: 1, Available: true}
	s.items = append(s.items, it)
	return it
}

func (s *fakeStore) openRequests() []*models.Request {
	var open []*models.Request
	for _, rq := range s.requests {
		if rq.ReturnDate == nil {
			open = append(open, rq)
		}
	}
	return open
}

type fakeCatalog struct{ *fakeStore }

func (f fakeCatalog) FindStatusByName(ctx context.Context, table repository.StatusTable, name string) (*models.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["FindStatusByName"]++
	for _, st := range f.statuses[table] {
		if st.Name == name {
			found := st
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f fakeCatalog) ListStatuses(ctx context.Context, table repository.StatusTable) ([]models.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Status(nil), f.statuses[table]...), nil
}

func (f fakeCatalog) ListRooms(ctx context.Context) ([]models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListRooms"]++
	rooms := make([]models.Room, 0, len(f.rooms))
	for _, r := range f.rooms {
		rooms = append(rooms, r)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (f fakeCatalog) ListHardwareTypes(ctx context.Context) ([]models.HardwareType, error) {
	return []models.HardwareType{{ID: 1, Name: "Measurement", Template: models.Specifications{"range": ""}}}, nil
}

func (f fakeCatalog) ListBuildings(ctx context.Context) ([]models.Building, error) {
	return []models.Building{{ID: 1, Name: "Main", Address: "Kaliningrad"}}, nil
}

func (f fakeCatalog) ListLabs(ctx context.Context) ([]models.Lab, error) {
	return []models.Lab{{ID: 1, Name: "Electronics"}}, nil
}

func (f fakeCatalog) ListPlaces(ctx context.Context) ([]models.Place, error) {
	return []models.Place{{ID: 1, Name: "Shelf A"}}, nil
}

type fakeUsers struct{ *fakeStore }

func (f fakeUsers) hasAccess(userID int64) bool {
	for _, a := range f.access {
		if a.User == userID {
			return true
		}
	}
	return false
}

func (f fakeUsers) view(u *models.User) models.StudentView {
	created := u.Created
	return models.StudentView{
		ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, CardID: u.CardID,
		Active: u.Active, HasAccess: f.hasAccess(u.ID), Created: &created,
	}
}

func (f fakeUsers) ListStudents(ctx context.Context, userType int64) ([]models.StudentView, error) {
	f.mu.Lock()
	f.calls["ListStudents"]++
	var out []models.StudentView
	for _, u := range f.users {
		if u.UserType == userType {
			out = append(out, f.view(u))
		}
	}
	hook := f.afterListStudents
	f.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if hook != nil {
		hook()
	}
	return out, nil
}

func (f fakeUsers) FindStudentByCard(ctx context.Context, userType int64, cardID string) (*models.StudentView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.UserType == userType && u.CardID == cardID {
			v := f.view(u)
			return &v, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f fakeUsers) ExistsByCard(ctx context.Context, cardID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.CardID == cardID {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeUsers) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	user.ID = f.id()
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

type fakeAccess struct{ *fakeStore }

func (f fakeAccess) Grant(ctx context.Context, userID, roomID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return false, f.writeErr
	}
	if _, ok := f.users[userID]; !ok {
		return false, repository.ErrMissingReference
	}
	if _, ok := f.rooms[roomID]; !ok {
		return false, repository.ErrMissingReference
	}
	for _, a := range f.access {
		if a.User == userID && a.Room == roomID {
			return false, nil
		}
	}
	f.access = append(f.access, models.UserAccess{ID: f.id(), User: userID, Room: roomID})
	return true, nil
}

func (f fakeAccess) Revoke(ctx context.Context, userID, roomID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	kept := f.access[:0]
	var removed int64
	for _, a := range f.access {
		if a.User == userID && a.Room == roomID {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	f.access = kept
	return removed, nil
}

func (f fakeAccess) Exists(ctx context.Context, userID, roomID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.access {
		if a.User == userID && a.Room == roomID {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeAccess) ListRooms(ctx context.Context, userID int64) ([]models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rooms []models.Room
	for _, a := range f.access {
		if a.User == userID {
			rooms = append(rooms, f.rooms[a.Room])
		}
	}
	return rooms, nil
}

type fakeItems struct{ *fakeStore }

func (f fakeItems) view(it *models.Item) models.ItemView {
	return models.ItemView{
		ID:             it.InvKey,
		Name:           f.hardware[it.Hardware],
		Status:         f.statusName(repository.TableItemStatus, it.Status),
		Owner:          it.Owner,
		Location:       f.places[it.Place],
		Available:      it.Available,
		Specifications: it.Specifications,
	}
}

func (f fakeItems) List(ctx context.Context) ([]models.ItemView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListItems"]++
	out := make([]models.ItemView, 0, len(f.items))
	for _, it := range f.items {
		out = append(out, f.view(it))
	}
	return out, nil
}

func (f fakeItems) FindViewByKey(ctx context.Context, invKey string) (*models.ItemView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it := f.item(invKey)
	if it == nil {
		return nil, sql.ErrNoRows
	}
	v := f.view(it)
	return &v, nil
}

func (f fakeItems) OpenRequest(ctx context.Context, invKey string) (*models.OpenRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it := f.item(invKey)
	if it == nil {
		return nil, nil
	}
	for _, rq := range f.openRequests() {
		if rq.Item != nil && *rq.Item == it.ID {
			return &models.OpenRequest{
				RequestID:         rq.ID,
				UserID:            rq.User,
				UserName:          f.users[rq.User].Name,
				TakenDate:         rq.TakenDate,
				PlannedReturnDate: rq.PlannedReturnDate,
			}, nil
		}
	}
	return nil, nil
}

func (f fakeItems) Create(ctx context.Context, item *models.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	if f.item(item.InvKey) != nil {
		return repository.ErrDuplicate
	}
	if _, ok := f.hardware[item.Hardware]; !ok {
		return repository.ErrMissingReference
	}
	item.ID = f.id()
	stored := *item
	f.items = append(f.items, &stored)
	return nil
}

type fakeLending struct{ *fakeStore }

func (f fakeLending) Checkout(ctx context.Context, params models.CheckoutParams) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	it := f.item(params.ItemKey)
	if it == nil {
		return nil, repository.ErrItemNotFound
	}
	if !it.Available {
		return nil, repository.ErrItemCheckedOut
	}
	for _, rq := range f.openRequests() {
		if rq.Item != nil && *rq.Item == it.ID {
			return nil, repository.ErrItemCheckedOut
		}
	}
	if _, ok := f.users[params.UserID]; !ok {
		return nil, repository.ErrMissingReference
	}
	now := time.Now().UTC()
	itemID := it.ID
	rq := &models.Request{
		ID: f.id(), Status: params.ActiveStatus, User: params.UserID, IssuedBy: params.IssuedBy,
		Item: &itemID, Comment: params.Comment, Created: now, TakenDate: now,
		PlannedReturnDate: params.PlannedReturnDate,
	}
	f.requests = append(f.requests, rq)
	it.Status = params.CheckedOutStatus
	it.Available = false
	out := *rq
	return &out, nil
}

func (f fakeLending) Return(ctx context.Context, params models.ReturnParams) (*models.ReturnResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	it := f.item(params.ItemKey)
	if it == nil {
		return nil, repository.ErrItemNotFound
	}
	it.Status = params.AvailableStatus
	it.Available = true

	result := &models.ReturnResult{ItemID: it.ID}
	var target *models.Request
	for _, rq := range f.openRequests() {
		if rq.Status != params.ActiveStatus {
			continue
		}
		if params.AnyItem || (rq.Item != nil && *rq.Item == it.ID) {
			target = rq
			break
		}
	}
	if target != nil {
		now := time.Now().UTC()
		target.Status = params.ClosedStatus
		target.ReturnDate = &now
		id := target.ID
		result.ClosedRequestID = &id
	}
	if params.AnyItem {
		for _, rq := range f.openRequests() {
			if rq.Item != nil && *rq.Item == it.ID {
				rq.Item = nil
				result.DetachedRequests++
			}
		}
	}
	return result, nil
}

func (f fakeLending) ListRequests(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []models.Request
	for _, rq := range f.requests {
		if filter.UserID > 0 && rq.User != filter.UserID {
			continue
		}
		if filter.Open != nil && rq.Open() != *filter.Open {
			continue
		}
		matched = append(matched, *rq)
	}
	start := (filter.Page - 1) * filter.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched), nil
}

// memoryCache is an in-memory CacheRepository.
type memoryCache struct {
	mu      sync.Mutex
	values  map[string]interface{}
	deleted []string
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]interface{}{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	switch d := dest.(type) {
	case *[]models.ItemView:
		*d = v.([]models.ItemView)
	case *[]models.StudentView:
		*d = v.([]models.StudentView)
	case *[]models.Room:
		*d = v.([]models.Room)
	case *[]models.HardwareType:
		*d = v.([]models.HardwareType)
	default:
		return errors.New("unsupported cache destination")
	}
	return nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
		m.deleted = append(m.deleted, k)
	}
	return nil
}

// services wires every service over one fake store.
type services struct {
	store     *fakeStore
	cache     *memoryCache
	registry  *StatusRegistry
	directory *DirectoryService
	access    *AccessService
	lending   *LendingService
	catalog   *CatalogService
	metrics   *MetricsService
}

func newServices(store *fakeStore, legacyReturn bool) *services {
	metrics := NewMetricsService()
	mem := newMemoryCache()
	cache := NewCacheService(mem, metrics, time.Minute, nil, true)
	registry := NewStatusRegistry(fakeCatalog{store}, time.Minute, nil)
	directory := NewDirectoryService(fakeUsers{store}, registry, cache, nil, nil)
	return &services{
		store:     store,
		cache:     mem,
		registry:  registry,
		directory: directory,
		access:    NewAccessService(fakeAccess{store}, directory, cache, metrics, nil),
		lending: NewLendingService(fakeLending{store}, fakeItems{store}, registry, cache, metrics, config.LendingConfig{
			IssuerID:        1,
			CheckoutComment: "Equipment checkout",
			LegacyReturn:    legacyReturn,
		}, nil, nil),
		catalog: NewCatalogService(fakeCatalog{store}, fakeItems{store}, registry, cache, metrics, nil, nil),
		metrics: metrics,
	}
}
