package testutil

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/google/uuid"
)

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	mu            sync.RWMutex
	Categories    map[int32]*domain.AccountCategory
	Subcategories map[int32]*domain.AccountSubcategory
	// Accounts, when set, backs the HasAccounts checks so delete guards see
	// the accounts created through the linked repository
	Accounts *MockAccountRepository
	nextID   int32
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories:    make(map[int32]*domain.AccountCategory),
		Subcategories: make(map[int32]*domain.AccountSubcategory),
	}
}

// Seed adds a category with one subcategory and returns both
func (m *MockCategoryRepository) Seed(name, prefix, subName string, orderIndex int32) (*domain.AccountCategory, *domain.AccountSubcategory) {
	cat, _ := m.Create(context.Background(), &domain.AccountCategory{Name: name, NumberPrefix: prefix})
	sub, _ := m.CreateSubcategory(context.Background(), &domain.AccountSubcategory{
		CategoryID: cat.ID,
		Name:       subName,
		OrderIndex: orderIndex,
	})
	return cat, sub
}

// Create creates a new category
func (m *MockCategoryRepository) Create(ctx context.Context, category *domain.AccountCategory) (*domain.AccountCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	category.ID = m.nextID
	m.Categories[category.ID] = category
	return category, nil
}

// GetByID retrieves a category by ID
func (m *MockCategoryRepository) GetByID(ctx context.Context, id int32) (*domain.AccountCategory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if cat, ok := m.Categories[id]; ok {
		return cat, nil
	}
	return nil, domain.ErrCategoryNotFound
}

// GetByName retrieves a category by name
func (m *MockCategoryRepository) GetByName(ctx context.Context, name string) (*domain.AccountCategory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, cat := range m.Categories {
		if cat.Name == name {
			return cat, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

// GetAll retrieves all categories
func (m *MockCategoryRepository) GetAll(ctx context.Context) ([]*domain.AccountCategory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.AccountCategory, 0, len(m.Categories))
	for _, cat := range m.Categories {
		result = append(result, cat)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// HasAccounts reports whether any account references the category
func (m *MockCategoryRepository) HasAccounts(ctx context.Context, id int32) (bool, error) {
	if m.Accounts == nil {
		return false, nil
	}
	m.Accounts.mu.RLock()
	defer m.Accounts.mu.RUnlock()
	for _, a := range m.Accounts.Accounts {
		if a.CategoryID == id {
			return true, nil
		}
	}
	return false, nil
}

// Delete removes a category
func (m *MockCategoryRepository) Delete(ctx context.Context, id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(m.Categories, id)
	return nil
}

// CreateSubcategory creates a new subcategory
func (m *MockCategoryRepository) CreateSubcategory(ctx context.Context, sub *domain.AccountSubcategory) (*domain.AccountSubcategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	sub.ID = m.nextID
	m.Subcategories[sub.ID] = sub
	return sub, nil
}

// GetSubcategoryByName retrieves a subcategory by name within a category
func (m *MockCategoryRepository) GetSubcategoryByName(ctx context.Context, categoryID int32, name string) (*domain.AccountSubcategory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, sub := range m.Subcategories {
		if sub.CategoryID == categoryID && sub.Name == name {
			return sub, nil
		}
	}
	return nil, domain.ErrSubcategoryNotFound
}

// GetSubcategoriesByCategory retrieves the subcategories of a category
func (m *MockCategoryRepository) GetSubcategoriesByCategory(ctx context.Context, categoryID int32) ([]*domain.AccountSubcategory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.AccountSubcategory
	for _, sub := range m.Subcategories {
		if sub.CategoryID == categoryID {
			result = append(result, sub)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OrderIndex < result[j].OrderIndex })
	return result, nil
}

// SubcategoryHasAccounts reports whether any account references the subcategory
func (m *MockCategoryRepository) SubcategoryHasAccounts(ctx context.Context, id int32) (bool, error) {
	if m.Accounts == nil {
		return false, nil
	}
	m.Accounts.mu.RLock()
	defer m.Accounts.mu.RUnlock()
	for _, a := range m.Accounts.Accounts {
		if a.SubcategoryID == id {
			return true, nil
		}
	}
	return false, nil
}

// DeleteSubcategory removes a subcategory
func (m *MockCategoryRepository) DeleteSubcategory(ctx context.Context, id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Subcategories[id]; !ok {
		return domain.ErrSubcategoryNotFound
	}
	delete(m.Subcategories, id)
	return nil
}

// MockAccountRepository is a mock implementation of domain.AccountRepository.
// Safe for concurrent use so creation races can be tested with real
// goroutines.
type MockAccountRepository struct {
	mu        sync.RWMutex
	Accounts  map[int32]*domain.Account
	ByNumber  map[string]*domain.Account
	sequences map[string]int32
	nextID    int32
}

// NewMockAccountRepository creates a new MockAccountRepository
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		Accounts:  make(map[int32]*domain.Account),
		ByNumber:  make(map[string]*domain.Account),
		sequences: make(map[string]int32),
	}
}

// Create inserts the account, enforcing account number uniqueness the way
// the database unique index does
func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.ByNumber[account.AccountNumber]; exists {
		return nil, domain.ErrAccountNumberCollision
	}
	m.nextID++
	account.ID = m.nextID
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	m.Accounts[account.ID] = account
	m.ByNumber[account.AccountNumber] = account
	return account, nil
}

// GetByID retrieves an account by ID
func (m *MockAccountRepository) GetByID(ctx context.Context, id int32) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if account, ok := m.Accounts[id]; ok {
		return account, nil
	}
	return nil, domain.ErrAccountNotFound
}

// GetByNumber retrieves an account by its account number
func (m *MockAccountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if account, ok := m.ByNumber[number]; ok {
		return account, nil
	}
	return nil, domain.ErrAccountNotFound
}

// GetAll retrieves all accounts ordered by account number
func (m *MockAccountRepository) GetAll(ctx context.Context, includeInactive bool) ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Account
	for _, account := range m.Accounts {
		if !includeInactive && !account.IsActive {
			continue
		}
		result = append(result, account)
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.Compare(result[i].AccountNumber, result[j].AccountNumber) < 0
	})
	return result, nil
}

// GetByGroup retrieves the accounts of one (category, subcategory) group
func (m *MockAccountRepository) GetByGroup(ctx context.Context, categoryID, subcategoryID int32) ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Account
	for _, account := range m.Accounts {
		if account.CategoryID == categoryID && account.SubcategoryID == subcategoryID {
			result = append(result, account)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.Compare(result[i].AccountNumber, result[j].AccountNumber) < 0
	})
	return result, nil
}

// NextSequence atomically claims the next sequence value for a group key
func (m *MockAccountRepository) NextSequence(ctx context.Context, groupKey string) (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seq, claimed := m.sequences[groupKey]
	if claimed {
		seq++
	}
	m.sequences[groupKey] = seq
	return seq, nil
}

// SetSequence pre-positions a group's counter so tests can stage collisions
func (m *MockAccountRepository) SetSequence(groupKey string, seq int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[groupKey] = seq
}

// Update updates an account's descriptive fields
func (m *MockAccountRepository) Update(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Accounts[account.ID]; !ok {
		return nil, domain.ErrAccountNotFound
	}
	account.UpdatedAt = time.Now()
	m.Accounts[account.ID] = account
	m.ByNumber[account.AccountNumber] = account
	return account, nil
}

// SetActive activates or deactivates an account
func (m *MockAccountRepository) SetActive(ctx context.Context, id int32, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.Accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.IsActive = active
	return nil
}

// ActiveIDSet returns the IDs of all active accounts
func (m *MockAccountRepository) ActiveIDSet(ctx context.Context) (map[int32]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[int32]bool, len(m.Accounts))
	for id, account := range m.Accounts {
		if account.IsActive {
			result[id] = true
		}
	}
	return result, nil
}

// MockJournalRepository is a mock implementation of domain.JournalRepository
type MockJournalRepository struct {
	mu         sync.RWMutex
	Entries    map[uuid.UUID]*domain.JournalEntry
	Documents  map[uuid.UUID][]*domain.Document
	nextLineID int32
}

// NewMockJournalRepository creates a new MockJournalRepository
func NewMockJournalRepository() *MockJournalRepository {
	return &MockJournalRepository{
		Entries:   make(map[uuid.UUID]*domain.JournalEntry),
		Documents: make(map[uuid.UUID][]*domain.Document),
	}
}

// CreateEntry persists the entry with all its lines
func (m *MockJournalRepository) CreateEntry(ctx context.Context, entry *domain.JournalEntry) (*domain.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	for i := range entry.Lines {
		m.nextLineID++
		entry.Lines[i].ID = m.nextLineID
		entry.Lines[i].EntryID = entry.ID
	}
	m.Entries[entry.ID] = entry
	return entry, nil
}

// GetEntry retrieves an entry by ID
func (m *MockJournalRepository) GetEntry(ctx context.Context, id uuid.UUID) (*domain.JournalEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if entry, ok := m.Entries[id]; ok {
		return entry, nil
	}
	return nil, domain.ErrEntryNotFound
}

// GetEntries retrieves entries within a date range
func (m *MockJournalRepository) GetEntries(ctx context.Context, from, to time.Time) ([]*domain.JournalEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.JournalEntry
	for _, entry := range m.Entries {
		if entry.EntryDate.Before(from) || entry.EntryDate.After(to) {
			continue
		}
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EntryDate.Before(result[j].EntryDate) })
	return result, nil
}

// AttachDocument records a document against an entry
func (m *MockJournalRepository) AttachDocument(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Entries[doc.EntryID]; !ok {
		return nil, domain.ErrEntryNotFound
	}
	doc.ID = uuid.New()
	doc.UploadedAt = time.Now()
	m.Documents[doc.EntryID] = append(m.Documents[doc.EntryID], doc)
	return doc, nil
}

// GetDocuments lists the documents attached to an entry
func (m *MockJournalRepository) GetDocuments(ctx context.Context, entryID uuid.UUID) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Documents[entryID], nil
}

// MockAuditRepository is a mock implementation of domain.AuditRepository
type MockAuditRepository struct {
	mu     sync.Mutex
	Events []*domain.AuditEvent
}

// NewMockAuditRepository creates a new MockAuditRepository
func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

// Record appends an audit event
func (m *MockAuditRepository) Record(ctx context.Context, event *domain.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event.ID = uuid.New()
	event.RecordedAt = time.Now()
	m.Events = append(m.Events, event)
	return nil
}

// GetRecent returns the most recent events, newest first
func (m *MockAuditRepository) GetRecent(ctx context.Context, limit int32) ([]*domain.AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.AuditEvent
	for i := len(m.Events) - 1; i >= 0 && int32(len(result)) < limit; i-- {
		result = append(result, m.Events[i])
	}
	return result, nil
}

// MockAPITokenRepository is a mock implementation of domain.APITokenRepository
type MockAPITokenRepository struct {
	mu     sync.RWMutex
	Tokens map[uuid.UUID]*domain.APIToken
}

// NewMockAPITokenRepository creates a new MockAPITokenRepository
func NewMockAPITokenRepository() *MockAPITokenRepository {
	return &MockAPITokenRepository{Tokens: make(map[uuid.UUID]*domain.APIToken)}
}

// Create stores a new token
func (m *MockAPITokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token.ID = uuid.New()
	token.CreatedAt = time.Now()
	m.Tokens[token.ID] = token
	return nil
}

// GetByUser retrieves a user's active tokens
func (m *MockAPITokenRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.APIToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.APIToken
	for _, token := range m.Tokens {
		if token.UserID == userID && token.RevokedAt == nil {
			result = append(result, token)
		}
	}
	return result, nil
}

// GetByHash retrieves an active token by its hash
func (m *MockAPITokenRepository) GetByHash(ctx context.Context, hash string) (*domain.APIToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, token := range m.Tokens {
		if token.TokenHash == hash && token.RevokedAt == nil {
			return token, nil
		}
	}
	return nil, domain.ErrAPITokenNotFound
}

// Revoke marks a token revoked
func (m *MockAPITokenRepository) Revoke(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.Tokens[id]
	if !ok || token.UserID != userID || token.RevokedAt != nil {
		return domain.ErrAPITokenNotFound
	}
	now := time.Now()
	token.RevokedAt = &now
	return nil
}

// UpdateLastUsed touches a token's last_used_at
func (m *MockAPITokenRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.Tokens[id]
	if !ok {
		return domain.ErrAPITokenNotFound
	}
	now := time.Now()
	token.LastUsedAt = &now
	return nil
}

// MockDocumentStorage is an in-memory implementation of the document storage
// interface
type MockDocumentStorage struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

// NewMockDocumentStorage creates a new MockDocumentStorage
func NewMockDocumentStorage() *MockDocumentStorage {
	return &MockDocumentStorage{Objects: make(map[string][]byte)}
}

// Upload stores the object in memory
func (m *MockDocumentStorage) Upload(ctx context.Context, objectKey string, data io.Reader, contentType string, size int64) (string, error) {
	content, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectKey] = content
	return objectKey, nil
}

// Delete removes an object
func (m *MockDocumentStorage) Delete(ctx context.Context, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, objectKey)
	return nil
}

// GeneratePresignedURL returns a deterministic fake URL for an object
func (m *MockDocumentStorage) GeneratePresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.example.com/%s", objectKey), nil
}
