package store

import (
	"sort"
	"sync"
	"time"

	"giftregistry/pkg/domain"
)

// MemoryStore keeps all records in-process. It mirrors GormStore behavior
// closely enough to back the service layer in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
	email map[string]string // email -> user ID
	lists map[string]domain.List
	gifts map[string]domain.Gift
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]domain.User),
		email: make(map[string]string),
		lists: make(map[string]domain.List),
		gifts: make(map[string]domain.Gift),
	}
}

// SaveUser stores or replaces a user record.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.users[u.ID]; ok && old.Email != u.Email {
		delete(m.email, old.Email)
	}
	m.users[u.ID] = u
	m.email[u.Email] = u.ID
	return nil
}

// HasUserEmail checks if email exists.
func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.email[email]
	return ok, nil
}

// GetUserByEmail looks up a user by email.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.email[email]
	if !ok {
		return domain.User{}, false, nil
	}
	u, ok := m.users[id]
	return u, ok, nil
}

// GetUserByID returns a user by ID.
func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// GetUserByGlobalHash resolves a user from the global share code.
func (m *MemoryStore) GetUserByGlobalHash(hashID string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.GlobalHashID == hashID {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

// SaveList stores or replaces a list record.
func (m *MemoryStore) SaveList(l domain.List) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[l.ID] = l
	return nil
}

// GetList retrieves a list by ID.
func (m *MemoryStore) GetList(id string) (domain.List, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.lists[id]
	return l, ok, nil
}

// GetListBySlug resolves a list from its public slug.
func (m *MemoryStore) GetListBySlug(slug string) (domain.List, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.lists {
		if l.Slug == slug {
			return l, true, nil
		}
	}
	return domain.List{}, false, nil
}

// ListListsByOwner returns all lists of a user, newest first.
func (m *MemoryStore) ListListsByOwner(userID string) ([]domain.List, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.List, 0)
	for _, l := range m.lists {
		if l.UserID == userID {
			res = append(res, l)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[j].CreatedAt.Before(res[i].CreatedAt) })
	return res, nil
}

// ListSummariesByOwner returns lists annotated with available gift counts.
func (m *MemoryStore) ListSummariesByOwner(userID string) ([]domain.ListSummary, error) {
	lists, err := m.ListListsByOwner(userID)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	totals := make(map[string]int)
	for _, g := range m.gifts {
		if g.UserID == userID && g.Status == domain.GiftAvailable {
			totals[g.ListID]++
		}
	}
	res := make([]domain.ListSummary, 0, len(lists))
	for _, l := range lists {
		res = append(res, domain.ListSummary{List: l, TotalGifts: totals[l.ID]})
	}
	return res, nil
}

// DeleteListWithGifts removes a list and all its gifts.
func (m *MemoryStore) DeleteListWithGifts(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for gid, g := range m.gifts {
		if g.ListID == id {
			delete(m.gifts, gid)
		}
	}
	delete(m.lists, id)
	return nil
}

// SaveGift stores or replaces a gift record.
func (m *MemoryStore) SaveGift(g domain.Gift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gifts[g.ID] = g
	return nil
}

// GetGift retrieves a gift by ID.
func (m *MemoryStore) GetGift(id string) (domain.Gift, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.gifts[id]
	return g, ok, nil
}

// DeleteGift removes a gift.
func (m *MemoryStore) DeleteGift(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.gifts, id)
	return nil
}

// ListAvailableGiftsByList returns available gifts of a list in sort order.
func (m *MemoryStore) ListAvailableGiftsByList(listID string, sortOpt domain.SortOption) ([]domain.Gift, error) {
	gifts := m.filterGifts(func(g domain.Gift) bool {
		return g.ListID == listID && g.Status == domain.GiftAvailable
	})
	SortGifts(gifts, sortOpt, domain.ScopeList)
	return gifts, nil
}

// ListAvailableGiftsByOwner returns a user's available gifts across lists.
func (m *MemoryStore) ListAvailableGiftsByOwner(userID string, sortOpt domain.SortOption) ([]domain.Gift, error) {
	gifts := m.filterGifts(func(g domain.Gift) bool {
		return g.UserID == userID && g.Status == domain.GiftAvailable
	})
	SortGifts(gifts, sortOpt, domain.ScopeGlobal)
	return gifts, nil
}

func (m *MemoryStore) filterGifts(keep func(domain.Gift) bool) []domain.Gift {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Gift, 0)
	for _, g := range m.gifts {
		if keep(g) {
			res = append(res, g)
		}
	}
	return res
}

// NextListPriority returns the next free position in a list, 0 when empty.
func (m *MemoryStore) NextListPriority(listID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	next := 0
	for _, g := range m.gifts {
		if g.ListID == listID && g.ListPriority+1 > next {
			next = g.ListPriority + 1
		}
	}
	return next, nil
}

// NextGlobalPriority returns the next free global position of a user.
func (m *MemoryStore) NextGlobalPriority(userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	next := 0
	for _, g := range m.gifts {
		if g.UserID == userID && g.GlobalPriority+1 > next {
			next = g.GlobalPriority + 1
		}
	}
	return next, nil
}

// SetListPriorities assigns list-scope priority = position for each ID.
// IDs outside the list/owner scope are silent no-ops.
func (m *MemoryStore) SetListPriorities(listID, userID string, giftIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for pos, giftID := range giftIDs {
		g, ok := m.gifts[giftID]
		if !ok || g.ListID != listID || g.UserID != userID {
			continue
		}
		g.ListPriority = pos
		m.gifts[giftID] = g
	}
	return nil
}

// SetGlobalPriorities assigns global-scope priority = position for each ID.
func (m *MemoryStore) SetGlobalPriorities(userID string, giftIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for pos, giftID := range giftIDs {
		g, ok := m.gifts[giftID]
		if !ok || g.UserID != userID {
			continue
		}
		g.GlobalPriority = pos
		m.gifts[giftID] = g
	}
	return nil
}

// ClaimGift flips an available gift to bought. The check and write happen
// under one lock so concurrent claimers observe exactly one success.
func (m *MemoryStore) ClaimGift(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.gifts[id]
	if !ok || g.Status != domain.GiftAvailable {
		return false, nil
	}
	g.Status = domain.GiftBought
	g.UpdatedAt = time.Now().UTC()
	m.gifts[id] = g
	return true, nil
}
