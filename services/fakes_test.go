package services_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"restaurant-service/cache"
	"restaurant-service/models"
	"restaurant-service/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// memDB is an in-memory stand-in for Postgres. Transactions are serialized,
// which mirrors the row lock PlaceOrder takes on the cart, and roll back to a
// snapshot on error.
type memDB struct {
	mu   sync.Mutex
	txMu sync.Mutex

	categories map[uint]models.Category
	items      map[uint]models.MenuItem
	lines      map[uint]models.CartLine
	orders     map[uint]models.Order
	crew       map[uint]bool
	managers   map[uint]bool
	admins     map[uint]bool
	others     map[uint]bool
	nextID     uint

	failCartDelete   error
	failCategorySave error
	loseRace         bool
	// beforeCartClear runs inside PlaceOrder after the cart was read and
	// before it is cleared, outside the fake's lock.
	beforeCartClear func()
}

func newMemDB() *memDB {
	return &memDB{
		categories: map[uint]models.Category{},
		items:      map[uint]models.MenuItem{},
		lines:      map[uint]models.CartLine{},
		orders:     map[uint]models.Order{},
		crew:       map[uint]bool{},
		managers:   map[uint]bool{},
		admins:     map[uint]bool{},
		others:     map[uint]bool{},
		nextID:     100,
	}
}

func (d *memDB) id() uint {
	d.nextID++
	return d.nextID
}

type snapshot struct {
	lines  map[uint]models.CartLine
	orders map[uint]models.Order
}

func (d *memDB) snapshot() snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := snapshot{lines: map[uint]models.CartLine{}, orders: map[uint]models.Order{}}
	for k, v := range d.lines {
		s.lines[k] = v
	}
	for k, v := range d.orders {
		v.Items = append([]models.OrderItem(nil), v.Items...)
		s.orders[k] = v
	}
	return s
}

func (d *memDB) restore(s snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lines = s.lines
	d.orders = s.orders
}

// seeding helpers

func (d *memDB) addCategory(slug, title string) models.Category {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := models.Category{ID: d.id(), Slug: slug, Title: title}
	d.categories[c.ID] = c
	return c
}

func (d *memDB) addItem(title, price string, featured bool, categoryID uint) models.MenuItem {
	d.mu.Lock()
	defer d.mu.Unlock()
	it := models.MenuItem{ID: d.id(), Title: title, Price: decimal.RequireFromString(price), Featured: featured, CategoryID: categoryID}
	d.items[it.ID] = it
	return it
}

func (d *memDB) cartOf(userID uint) []models.CartLine {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []models.CartLine
	for _, l := range d.lines {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out
}

func (d *memDB) orderCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.orders)
}

// Transactor

func (d *memDB) WithinTransaction(_ context.Context, fn func(store repository.Store) error) error {
	d.txMu.Lock()
	defer d.txMu.Unlock()

	snap := d.snapshot()
	if err := fn(memStore{d}); err != nil {
		d.restore(snap)
		return err
	}
	return nil
}

type memStore struct{ d *memDB }

func (s memStore) Carts() repository.CartRepository   { return &memCartRepo{s.d} }
func (s memStore) Orders() repository.OrderRepository { return &memOrderRepo{s.d} }

// Categories

type memCategoryRepo struct{ d *memDB }

func (r *memCategoryRepo) Create(_ context.Context, c *models.Category) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if r.d.failCategorySave != nil {
		return r.d.failCategorySave
	}
	c.ID = r.d.id()
	r.d.categories[c.ID] = *c
	return nil
}

func (r *memCategoryRepo) FindByID(_ context.Context, id uint) (*models.Category, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	c, ok := r.d.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *memCategoryRepo) SlugTaken(_ context.Context, slug string, excludeID uint) (bool, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, c := range r.d.categories {
		if c.Slug == slug && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCategoryRepo) FindAll(_ context.Context, page, limit int) ([]models.Category, int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	all := make([]models.Category, 0, len(r.d.categories))
	for _, c := range r.d.categories {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r *memCategoryRepo) Update(_ context.Context, c *models.Category) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.categories[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.d.categories[c.ID] = *c
	return nil
}

func (r *memCategoryRepo) Delete(_ context.Context, id uint) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.categories[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.d.categories, id)
	return nil
}

func (r *memCategoryRepo) CountMenuItems(_ context.Context, id uint) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	var n int64
	for _, it := range r.d.items {
		if it.CategoryID == id {
			n++
		}
	}
	return n, nil
}

// Menu items

type memMenuItemRepo struct{ d *memDB }

func (r *memMenuItemRepo) Create(_ context.Context, it *models.MenuItem) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	it.ID = r.d.id()
	stored := *it
	stored.Category = nil
	r.d.items[it.ID] = stored
	return nil
}

func (r *memMenuItemRepo) FindByID(_ context.Context, id uint) (*models.MenuItem, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	it, ok := r.d.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if c, ok := r.d.categories[it.CategoryID]; ok {
		it.Category = &c
	}
	return &it, nil
}

func (r *memMenuItemRepo) FindAll(_ context.Context, f models.MenuItemFilter) ([]models.MenuItem, int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	var all []models.MenuItem
	for _, it := range r.d.items {
		c := r.d.categories[it.CategoryID]
		if f.Category != "" && !strings.EqualFold(c.Title, f.Category) {
			continue
		}
		if f.Featured != nil && it.Featured != *f.Featured {
			continue
		}
		it.Category = &c
		all = append(all, it)
	}

	less := func(i, j int) bool { return all[i].ID < all[j].ID }
	switch f.Ordering {
	case "-id":
		less = func(i, j int) bool { return all[i].ID > all[j].ID }
	case "price":
		less = func(i, j int) bool { return all[i].Price.LessThan(all[j].Price) }
	case "-price":
		less = func(i, j int) bool { return all[i].Price.GreaterThan(all[j].Price) }
	case "title":
		less = func(i, j int) bool { return all[i].Title < all[j].Title }
	case "-title":
		less = func(i, j int) bool { return all[i].Title > all[j].Title }
	}
	sort.Slice(all, less)
	return paginate(all, f.Page, f.Limit), int64(len(all)), nil
}

func (r *memMenuItemRepo) Update(_ context.Context, it *models.MenuItem) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.items[it.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *it
	stored.Category = nil
	r.d.items[it.ID] = stored
	return nil
}

func (r *memMenuItemRepo) Delete(_ context.Context, id uint) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.d.items, id)
	return nil
}

// Cart

type memCartRepo struct{ d *memDB }

func (r *memCartRepo) FindByUser(_ context.Context, userID uint) ([]models.CartLine, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	var out []models.CartLine
	for _, l := range r.d.lines {
		if l.UserID == userID {
			if it, ok := r.d.items[l.MenuItemID]; ok {
				l.MenuItem = &it
			}
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memCartRepo) LockByUser(ctx context.Context, userID uint) ([]models.CartLine, error) {
	return r.FindByUser(ctx, userID)
}

func (r *memCartRepo) FindLine(_ context.Context, userID, menuItemID uint) (*models.CartLine, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for _, l := range r.d.lines {
		if l.UserID == userID && l.MenuItemID == menuItemID {
			return &l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCartRepo) AddQuantity(_ context.Context, line *models.CartLine) (bool, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for id, l := range r.d.lines {
		if l.UserID == line.UserID && l.MenuItemID == line.MenuItemID {
			qty := l.Quantity + line.Quantity
			price := models.LinePrice(qty, l.UnitPrice)
			if qty > models.MaxLineQuantity || !price.LessThan(models.MaxAmount) {
				return false, nil
			}
			l.Quantity = qty
			l.Price = price
			r.d.lines[id] = l
			return true, nil
		}
	}
	line.ID = r.d.id()
	stored := *line
	stored.MenuItem = nil
	r.d.lines[line.ID] = stored
	return true, nil
}

func (r *memCartRepo) DeleteLines(_ context.Context, userID uint, ids []uint) (int64, error) {
	if hook := r.d.beforeCartClear; hook != nil {
		hook()
	}
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if r.d.failCartDelete != nil {
		return 0, r.d.failCartDelete
	}
	var n int64
	for _, id := range ids {
		if l, ok := r.d.lines[id]; ok && l.UserID == userID {
			delete(r.d.lines, id)
			n++
		}
	}
	return n, nil
}

func (r *memCartRepo) DeleteByUser(_ context.Context, userID uint) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if r.d.failCartDelete != nil {
		return 0, r.d.failCartDelete
	}
	var n int64
	for id, l := range r.d.lines {
		if l.UserID == userID {
			delete(r.d.lines, id)
			n++
		}
	}
	return n, nil
}

// Orders

type memOrderRepo struct{ d *memDB }

func (r *memOrderRepo) Create(_ context.Context, o *models.Order) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	o.ID = r.d.id()
	for i := range o.Items {
		o.Items[i].ID = r.d.id()
		o.Items[i].OrderID = o.ID
	}
	stored := *o
	stored.Items = append([]models.OrderItem(nil), o.Items...)
	r.d.orders[o.ID] = stored
	return nil
}

func inScope(o models.Order, f models.OrderFilter) bool {
	if f.UserID != nil && o.UserID != *f.UserID {
		return false
	}
	if f.DeliveryCrewID != nil && (o.DeliveryCrewID == nil || *o.DeliveryCrewID != *f.DeliveryCrewID) {
		return false
	}
	return true
}

func (r *memOrderRepo) FindByID(_ context.Context, id uint, f models.OrderFilter) (*models.Order, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	o, ok := r.d.orders[id]
	if !ok || !inScope(o, f) {
		return nil, gorm.ErrRecordNotFound
	}
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return &o, nil
}

func (r *memOrderRepo) FindAll(_ context.Context, f models.OrderFilter, page, limit int) ([]models.Order, int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	var all []models.Order
	for _, o := range r.d.orders {
		if inScope(o, f) {
			all = append(all, o)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r *memOrderRepo) UpdateGuarded(_ context.Context, id uint, from, to models.OrderChanges) (bool, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	o, ok := r.d.orders[id]
	if !ok || r.d.loseRace || o.Status != from.Status || !sameID(o.DeliveryCrewID, from.DeliveryCrewID) {
		return false, nil
	}
	o.Status = to.Status
	o.DeliveryCrewID = to.DeliveryCrewID
	r.d.orders[id] = o
	return true, nil
}

func sameID(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Groups

type memGroups struct{ d *memDB }

func (g *memGroups) IsAdministrator(_ context.Context, userID uint) (bool, error) {
	g.d.mu.Lock()
	defer g.d.mu.Unlock()
	return g.d.admins[userID], nil
}

func (g *memGroups) HasRole(_ context.Context, userID uint, group string) (bool, error) {
	g.d.mu.Lock()
	defer g.d.mu.Unlock()
	switch group {
	case models.GroupDeliveryCrew:
		return g.d.crew[userID], nil
	case models.GroupManager:
		return g.d.managers[userID], nil
	}
	return false, nil
}

func (g *memGroups) GroupCountOf(_ context.Context, userID uint) (int64, error) {
	g.d.mu.Lock()
	defer g.d.mu.Unlock()
	var n int64
	if g.d.crew[userID] {
		n++
	}
	if g.d.managers[userID] {
		n++
	}
	if g.d.others[userID] {
		n++
	}
	return n, nil
}

func paginate[T any](all []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(all) {
		return []T{}
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

// recordingCache is a MenuCache that stores everything in memory.
type recordingCache struct {
	mu            sync.Mutex
	version       int64
	lists         map[string]*cache.MenuPage
	invalidations int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{version: 1, lists: map[string]*cache.MenuPage{}}
}

func (c *recordingCache) GetList(_ context.Context, f models.MenuItemFilter) (*cache.MenuPage, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.lists[cache.ListKey(c.version, f)]
	return p, c.version, ok
}

func (c *recordingCache) SetList(version int64, f models.MenuItemFilter, p *cache.MenuPage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[cache.ListKey(version, f)] = p
}

func (c *recordingCache) GetItem(context.Context, uint) (*models.MenuItem, int64, bool) {
	return nil, 0, false
}

func (c *recordingCache) SetItem(int64, *models.MenuItem) {}

func (c *recordingCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	c.invalidations++
	return nil
}
