package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/model"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/repository"
	pkgerrors "github.com/claudialoqatr/lost-found-helper-sub000/pkg/errors"
)

// ── 调用顺序记录 ──

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	if user.Version == 0 {
		user.Version = 1
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	stored, ok := m.users[user.UserID]
	if !ok || stored.Version != user.Version {
		return pkgerrors.ErrOptimisticLock
	}
	user.Version++
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

// ── Mock QRCodeRepository ──

type mockQRCodeRepo struct {
	codes map[string]*model.QRCode // key: qr_code_id
	items *mockItemRepo
}

func newMockQRCodeRepo(items *mockItemRepo) *mockQRCodeRepo {
	return &mockQRCodeRepo{codes: make(map[string]*model.QRCode), items: items}
}

// withItem 模拟 Preload("Item")
func (m *mockQRCodeRepo) withItem(c *model.QRCode) *model.QRCode {
	cp := *c
	cp.Item = nil
	if cp.ItemID != nil && m.items != nil {
		if it, ok := m.items.items[*cp.ItemID]; ok {
			itemCopy := *it
			cp.Item = &itemCopy
		}
	}
	return &cp
}

func (m *mockQRCodeRepo) BatchCreate(_ context.Context, codes []model.QRCode) error {
	for i := range codes {
		c := codes[i]
		if c.QRCodeID == "" {
			c.QRCodeID = fmt.Sprintf("qr-%d", len(m.codes)+1)
		}
		if c.Version == 0 {
			c.Version = 1
		}
		m.codes[c.QRCodeID] = &c
	}
	return nil
}

func (m *mockQRCodeRepo) GetByID(_ context.Context, id string) (*model.QRCode, error) {
	if c, ok := m.codes[id]; ok {
		return m.withItem(c), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockQRCodeRepo) GetByIdentifier(_ context.Context, identifier string) (*model.QRCode, error) {
	for _, c := range m.codes {
		if c.Identifier == identifier {
			return m.withItem(c), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockQRCodeRepo) GetByLoqatrIDForUpdate(_ context.Context, loqatrID string) (*model.QRCode, error) {
	for _, c := range m.codes {
		if c.LoqatrID == loqatrID {
			return m.withItem(c), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockQRCodeRepo) ListByOwner(_ context.Context, ownerID string, offset, limit int) ([]model.QRCode, int64, error) {
	var all []model.QRCode
	for _, c := range m.codes {
		if c.IsOwnedBy(ownerID) {
			all = append(all, *m.withItem(c))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Identifier < all[j].Identifier })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockQRCodeRepo) ListByBatch(_ context.Context, batchID string) ([]model.QRCode, error) {
	var result []model.QRCode
	for _, c := range m.codes {
		if c.BatchID != nil && *c.BatchID == batchID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Identifier < result[j].Identifier })
	return result, nil
}

func (m *mockQRCodeRepo) CountByIdentifierPrefix(_ context.Context, prefix string) (int64, error) {
	var n int64
	for _, c := range m.codes {
		if strings.HasPrefix(c.Identifier, prefix) {
			n++
		}
	}
	return n, nil
}

func (m *mockQRCodeRepo) Update(_ context.Context, code *model.QRCode) error {
	stored, ok := m.codes[code.QRCodeID]
	if !ok || stored.Version != code.Version {
		return pkgerrors.ErrOptimisticLock
	}
	code.Version++
	cp := *code
	cp.Item = nil
	m.codes[code.QRCodeID] = &cp
	return nil
}

// ── Mock ItemRepository ──

type mockItemRepo struct {
	items map[string]*model.Item
}

func newMockItemRepo() *mockItemRepo {
	return &mockItemRepo{items: make(map[string]*model.Item)}
}

func (m *mockItemRepo) Create(_ context.Context, item *model.Item) error {
	if item.ItemID == "" {
		item.ItemID = fmt.Sprintf("item-%d", len(m.items)+1)
	}
	cp := *item
	m.items[item.ItemID] = &cp
	return nil
}

func (m *mockItemRepo) GetByID(_ context.Context, id string) (*model.Item, error) {
	if it, ok := m.items[id]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockItemRepo) Update(_ context.Context, item *model.Item) error {
	cp := *item
	m.items[item.ItemID] = &cp
	return nil
}

func (m *mockItemRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.items, id)
	return nil
}

// ── Mock ScanRepository ──

type mockScanRepo struct {
	scans       map[int64]*model.Scan
	nextID      int64
	updateIPErr error
	purgeCutoff time.Time
	log         *callLog
}

func newMockScanRepo(log *callLog) *mockScanRepo {
	return &mockScanRepo{scans: make(map[int64]*model.Scan), nextID: 1, log: log}
}

func (m *mockScanRepo) Create(_ context.Context, scan *model.Scan) error {
	scan.ScanID = m.nextID
	m.nextID++
	if scan.ScannedAt.IsZero() {
		scan.ScannedAt = time.Now()
	}
	cp := *scan
	m.scans[scan.ScanID] = &cp
	return nil
}

func (m *mockScanRepo) GetByID(_ context.Context, id int64) (*model.Scan, error) {
	if s, ok := m.scans[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScanRepo) UpdateIP(_ context.Context, id int64, ip string) error {
	m.log.add("update_ip")
	if m.updateIPErr != nil {
		return m.updateIPErr
	}
	s, ok := m.scans[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.IPAddress = &ip
	now := time.Now()
	s.IPStampedAt = &now
	return nil
}

func (m *mockScanRepo) UpdateLocation(_ context.Context, id int64, qrCodeID string, lat, lng *float64, address *string) error {
	s, ok := m.scans[id]
	if !ok || s.QRCodeID != qrCodeID {
		return gorm.ErrRecordNotFound
	}
	if lat != nil && lng != nil {
		s.Latitude, s.Longitude = lat, lng
	}
	if address != nil {
		s.Address = address
	}
	return nil
}

func (m *mockScanRepo) ListByQRCode(_ context.Context, qrCodeID string, offset, limit int) ([]model.Scan, int64, error) {
	var all []model.Scan
	for _, s := range m.scans {
		if s.QRCodeID == qrCodeID {
			all = append(all, *s)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ScanID > all[j].ScanID })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockScanRepo) PurgeIPsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.purgeCutoff = cutoff
	var n int64
	for _, s := range m.scans {
		if s.IPAddress != nil && s.ScannedAt.Before(cutoff) {
			s.IPAddress = nil
			n++
		}
	}
	return n, nil
}

// ── Mock RevealRepository ──

type revealCall struct {
	identifier string
	scanID     int64
	quota      int
}

type mockRevealRepo struct {
	contact *model.RevealedContact
	err     error
	calls   []revealCall
	log     *callLog
}

func (m *mockRevealRepo) RevealContact(_ context.Context, identifier string, scanID int64, hourlyQuota int) (*model.RevealedContact, error) {
	m.log.add("reveal")
	m.calls = append(m.calls, revealCall{identifier: identifier, scanID: scanID, quota: hourlyQuota})
	if m.err != nil {
		return nil, m.err
	}
	return m.contact, nil
}

// ── Mock MessageRepository ──

type mockMessageRepo struct {
	messages map[string]*model.Message
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{messages: make(map[string]*model.Message)}
}

func (m *mockMessageRepo) Create(_ context.Context, msg *model.Message) error {
	if msg.MessageID == "" {
		msg.MessageID = fmt.Sprintf("msg-%d", len(m.messages)+1)
	}
	cp := *msg
	m.messages[msg.MessageID] = &cp
	return nil
}

func (m *mockMessageRepo) List(_ context.Context, recipientID string, unreadOnly bool, offset, limit int) ([]model.Message, int64, error) {
	var all []model.Message
	for _, msg := range m.messages {
		if msg.RecipientID != recipientID || (unreadOnly && msg.IsRead) {
			continue
		}
		all = append(all, *msg)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].MessageID < all[j].MessageID })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockMessageRepo) MarkAsRead(_ context.Context, id, recipientID string) error {
	msg, ok := m.messages[id]
	if !ok || msg.RecipientID != recipientID {
		return gorm.ErrRecordNotFound
	}
	msg.IsRead = true
	return nil
}

func (m *mockMessageRepo) CountUnread(_ context.Context, recipientID string) (int64, error) {
	var n int64
	for _, msg := range m.messages {
		if msg.RecipientID == recipientID && !msg.IsRead {
			n++
		}
	}
	return n, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	items     map[string]*model.Notification
	createErr error
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{items: make(map[string]*model.Notification)}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	if n.NotificationID == "" {
		n.NotificationID = fmt.Sprintf("notif-%d", len(m.items)+1)
	}
	cp := *n
	m.items[n.NotificationID] = &cp
	return nil
}

func (m *mockNotificationRepo) List(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var all []model.Notification
	for _, n := range m.items {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		all = append(all, *n)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].NotificationID < all[j].NotificationID })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockNotificationRepo) MarkAsRead(_ context.Context, id, userID string) error {
	n, ok := m.items[id]
	if !ok || n.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	n.IsRead = true
	return nil
}

func (m *mockNotificationRepo) MarkAllAsRead(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range m.items {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) byType(typ string) []model.Notification {
	var result []model.Notification
	for _, n := range m.items {
		if n.Type == typ {
			result = append(result, *n)
		}
	}
	return result
}

// ── Mock RetailerRepository ──

type mockRetailerRepo struct {
	retailers map[string]*model.Retailer
}

func newMockRetailerRepo() *mockRetailerRepo {
	return &mockRetailerRepo{retailers: make(map[string]*model.Retailer)}
}

func (m *mockRetailerRepo) Create(_ context.Context, r *model.Retailer) error {
	if r.RetailerID == "" {
		r.RetailerID = "retailer-" + r.Name
	}
	cp := *r
	m.retailers[r.RetailerID] = &cp
	return nil
}

func (m *mockRetailerRepo) GetByID(_ context.Context, id string) (*model.Retailer, error) {
	if r, ok := m.retailers[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRetailerRepo) List(_ context.Context, includeInactive bool, keyword string, offset, limit int) ([]model.Retailer, int64, error) {
	var all []model.Retailer
	for _, r := range m.retailers {
		if !includeInactive && !r.IsActive {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(keyword)) {
			continue
		}
		all = append(all, *r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockRetailerRepo) Update(_ context.Context, r *model.Retailer) error {
	cp := *r
	m.retailers[r.RetailerID] = &cp
	return nil
}

func (m *mockRetailerRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.retailers, id)
	return nil
}

// ── Mock QRBatchRepository ──

type mockQRBatchRepo struct {
	batches map[string]*model.QRBatch
}

func newMockQRBatchRepo() *mockQRBatchRepo {
	return &mockQRBatchRepo{batches: make(map[string]*model.QRBatch)}
}

func (m *mockQRBatchRepo) Create(_ context.Context, b *model.QRBatch) error {
	if b.BatchID == "" {
		b.BatchID = fmt.Sprintf("batch-%d", len(m.batches)+1)
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	cp := *b
	m.batches[b.BatchID] = &cp
	return nil
}

func (m *mockQRBatchRepo) GetByID(_ context.Context, id string) (*model.QRBatch, error) {
	if b, ok := m.batches[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockQRBatchRepo) List(_ context.Context, offset, limit int) ([]model.QRBatch, int64, error) {
	var all []model.QRBatch
	for _, b := range m.batches {
		all = append(all, *b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].BatchID < all[j].BatchID })
	return paginate(all, offset, limit), int64(len(all)), nil
}

// ── 测试辅助 ──

type mockRepos struct {
	user         *mockUserRepo
	qrCode       *mockQRCodeRepo
	item         *mockItemRepo
	scan         *mockScanRepo
	reveal       *mockRevealRepo
	message      *mockMessageRepo
	notification *mockNotificationRepo
	retailer     *mockRetailerRepo
	qrBatch      *mockQRBatchRepo
	log          *callLog
}

// newMockRepository 组装全部 mock；db 为 nil，BeginTx 返回 nil 事务
func newMockRepository() (*repository.Repository, *mockRepos) {
	log := &callLog{}
	items := newMockItemRepo()
	m := &mockRepos{
		user:         newMockUserRepo(),
		qrCode:       newMockQRCodeRepo(items),
		item:         items,
		scan:         newMockScanRepo(log),
		reveal:       &mockRevealRepo{log: log},
		message:      newMockMessageRepo(),
		notification: newMockNotificationRepo(),
		retailer:     newMockRetailerRepo(),
		qrBatch:      newMockQRBatchRepo(),
		log:          log,
	}
	repo := &repository.Repository{
		User:         m.user,
		QRCode:       m.qrCode,
		Item:         m.item,
		Scan:         m.scan,
		Reveal:       m.reveal,
		Message:      m.message,
		Notification: m.notification,
		Retailer:     m.retailer,
		QRBatch:      m.qrBatch,
	}
	return repo, m
}

// seedTag 写入一枚已认领的标签及其物品
func (m *mockRepos) seedTag(id, identifier, ownerID string, isPublic bool) *model.QRCode {
	tag := &model.QRCode{
		QRCodeID:   id,
		Identifier: identifier,
		LoqatrID:   "LQ" + strings.ToUpper(id),
		Status:     model.QRStatusUnassigned,
		IsPublic:   isPublic,
	}
	tag.Version = 1
	if ownerID != "" {
		itemID := "item-" + id
		m.item.items[itemID] = &model.Item{ItemID: itemID, OwnerID: ownerID, Name: "Blue backpack"}
		tag.Status = model.QRStatusActive
		tag.AssignedTo = &ownerID
		tag.ItemID = &itemID
	}
	m.qrCode.codes[id] = tag
	return tag
}

func paginate[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// ── Mock captcha.Verifier ──

type mockVerifier struct {
	ok        bool
	err       error
	calls     int
	lastToken string
	lastIP    string
	log       *callLog
}

func (v *mockVerifier) Verify(_ context.Context, token, remoteIP string) (bool, error) {
	v.log.add("verify")
	v.calls++
	v.lastToken = token
	v.lastIP = remoteIP
	return v.ok, v.err
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	entries map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{entries: make(map[string]time.Duration)}
}

func (b *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.entries[jti] = ttl
	return nil
}

func (b *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := b.entries[jti]
	return ok, nil
}
