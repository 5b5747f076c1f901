package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"giftregistry/pkg/domain"
)

const migrateLockID int64 = 52815281

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations under an advisory lock
// so concurrent instances do not race on schema changes.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		return migrate(tx)
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

// NewGormStoreWithDB wraps an already-open GORM connection. Used by tests
// that run against a non-Postgres dialector.
func NewGormStoreWithDB(db *gorm.DB) (*GormStore, error) {
	if err := migrate(db); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&UserModel{}, &ListModel{}, &GiftModel{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Save(&model).Error
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	return s.getUser("email = ?", email)
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	return s.getUser("id = ?", id)
}

// GetUserByGlobalHash resolves a user from the global share code.
func (s *GormStore) GetUserByGlobalHash(hashID string) (domain.User, bool, error) {
	return s.getUser("global_hash_id = ?", hashID)
}

func (s *GormStore) getUser(cond string, arg any) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, cond, arg).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// SaveList stores or updates a list.
func (s *GormStore) SaveList(l domain.List) error {
	model := listToModel(l)
	return s.db.Save(&model).Error
}

// GetList retrieves a list by ID.
func (s *GormStore) GetList(id string) (domain.List, bool, error) {
	return s.getList("id = ?", id)
}

// GetListBySlug resolves a list from its public slug.
func (s *GormStore) GetListBySlug(slug string) (domain.List, bool, error) {
	return s.getList("slug = ?", slug)
}

func (s *GormStore) getList(cond string, arg any) (domain.List, bool, error) {
	var model ListModel
	if err := s.db.First(&model, cond, arg).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.List{}, false, nil
		}
		return domain.List{}, false, err
	}
	return listFromModel(model), true, nil
}

// ListListsByOwner returns all lists of a user, newest first.
func (s *GormStore) ListListsByOwner(userID string) ([]domain.List, error) {
	var models []ListModel
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.List, 0, len(models))
	for _, m := range models {
		res = append(res, listFromModel(m))
	}
	return res, nil
}

// ListSummariesByOwner returns the user's lists annotated with a live count
// of available gifts. Counts are aggregated, not stored.
func (s *GormStore) ListSummariesByOwner(userID string) ([]domain.ListSummary, error) {
	lists, err := s.ListListsByOwner(userID)
	if err != nil {
		return nil, err
	}
	var counts []struct {
		ListID string
		Total  int
	}
	if err := s.db.Model(&GiftModel{}).
		Select("list_id, COUNT(*) AS total").
		Where("user_id = ? AND status = ?", userID, string(domain.GiftAvailable)).
		Group("list_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	totals := make(map[string]int, len(counts))
	for _, c := range counts {
		totals[c.ListID] = c.Total
	}
	res := make([]domain.ListSummary, 0, len(lists))
	for _, l := range lists {
		res = append(res, domain.ListSummary{List: l, TotalGifts: totals[l.ID]})
	}
	return res, nil
}

// DeleteListWithGifts removes a list and all its gifts in one transaction.
func (s *GormStore) DeleteListWithGifts(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&GiftModel{}, "list_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&ListModel{}, "id = ?", id).Error
	})
}

// SaveGift stores or updates a gift.
func (s *GormStore) SaveGift(g domain.Gift) error {
	model := giftToModel(g)
	return s.db.Save(&model).Error
}

// GetGift retrieves a gift by ID.
func (s *GormStore) GetGift(id string) (domain.Gift, bool, error) {
	var model GiftModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Gift{}, false, nil
		}
		return domain.Gift{}, false, err
	}
	return giftFromModel(model), true, nil
}

// DeleteGift removes a gift.
func (s *GormStore) DeleteGift(id string) error {
	return s.db.Delete(&GiftModel{}, "id = ?", id).Error
}

// ListAvailableGiftsByList returns available gifts of a list in sort order.
func (s *GormStore) ListAvailableGiftsByList(listID string, sortOpt domain.SortOption) ([]domain.Gift, error) {
	return s.listGifts(domain.ScopeList, sortOpt, "list_id = ? AND status = ?", listID, string(domain.GiftAvailable))
}

// ListAvailableGiftsByOwner returns a user's available gifts across all lists.
func (s *GormStore) ListAvailableGiftsByOwner(userID string, sortOpt domain.SortOption) ([]domain.Gift, error) {
	return s.listGifts(domain.ScopeGlobal, sortOpt, "user_id = ? AND status = ?", userID, string(domain.GiftAvailable))
}

func (s *GormStore) listGifts(scope domain.PriorityScope, sortOpt domain.SortOption, cond string, args ...any) ([]domain.Gift, error) {
	var models []GiftModel
	if err := s.db.Where(cond, args...).Order(orderClause(sortOpt, scope)).Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Gift, 0, len(models))
	for _, m := range models {
		res = append(res, giftFromModel(m))
	}
	return res, nil
}

// NextListPriority returns the next free position in a list, 0 when empty.
func (s *GormStore) NextListPriority(listID string) (int, error) {
	return s.nextPriority("COALESCE(MAX(list_priority) + 1, 0)", "list_id = ?", listID)
}

// NextGlobalPriority returns the next free global position of a user.
func (s *GormStore) NextGlobalPriority(userID string) (int, error) {
	return s.nextPriority("COALESCE(MAX(global_priority) + 1, 0)", "user_id = ?", userID)
}

func (s *GormStore) nextPriority(expr, cond string, arg any) (int, error) {
	var next int
	if err := s.db.Model(&GiftModel{}).Select(expr).Where(cond, arg).Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}

// SetListPriorities assigns list-scope priority = position for each ID.
// Each update is filtered by list and owner, so IDs outside the scope are
// silent no-ops. The batch is intentionally not transactional: a partial
// write is recoverable by a later full reorder.
func (s *GormStore) SetListPriorities(listID, userID string, giftIDs []string) error {
	for pos, giftID := range giftIDs {
		if err := s.db.Model(&GiftModel{}).
			Where("id = ? AND list_id = ? AND user_id = ?", giftID, listID, userID).
			Update("list_priority", pos).Error; err != nil {
			return err
		}
	}
	return nil
}

// SetGlobalPriorities assigns global-scope priority = position for each ID.
func (s *GormStore) SetGlobalPriorities(userID string, giftIDs []string) error {
	for pos, giftID := range giftIDs {
		if err := s.db.Model(&GiftModel{}).
			Where("id = ? AND user_id = ?", giftID, userID).
			Update("global_priority", pos).Error; err != nil {
			return err
		}
	}
	return nil
}

// ClaimGift flips an available gift to bought with a single conditional
// update. Returns false when the gift was already bought (or is absent), so
// concurrent claimers observe exactly one success.
func (s *GormStore) ClaimGift(id string) (bool, error) {
	res := s.db.Model(&GiftModel{}).
		Where("id = ? AND status = ?", id, string(domain.GiftAvailable)).
		Updates(map[string]any{
			"status":     string(domain.GiftBought),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		GlobalHashID: u.GlobalHashID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		GlobalHashID: m.GlobalHashID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func listToModel(l domain.List) ListModel {
	return ListModel{
		ID:           l.ID,
		UserID:       l.UserID,
		Name:         l.Name,
		Description:  l.Description,
		Slug:         l.Slug,
		PublicHashID: l.PublicHashID,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func listFromModel(m ListModel) domain.List {
	return domain.List{
		ID:           m.ID,
		UserID:       m.UserID,
		Name:         m.Name,
		Description:  m.Description,
		Slug:         m.Slug,
		PublicHashID: m.PublicHashID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func giftToModel(g domain.Gift) GiftModel {
	return GiftModel{
		ID:             g.ID,
		ListID:         g.ListID,
		UserID:         g.UserID,
		Name:           g.Name,
		Link:           g.Link,
		Price:          g.Price,
		Status:         string(g.Status),
		ListPriority:   g.ListPriority,
		GlobalPriority: g.GlobalPriority,
		InsertedAt:     g.InsertedAt,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}
}

func giftFromModel(m GiftModel) domain.Gift {
	return domain.Gift{
		ID:             m.ID,
		ListID:         m.ListID,
		UserID:         m.UserID,
		Name:           m.Name,
		Link:           m.Link,
		Price:          m.Price,
		Status:         domain.GiftStatus(m.Status),
		ListPriority:   m.ListPriority,
		GlobalPriority: m.GlobalPriority,
		InsertedAt:     m.InsertedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
