// Package repotest provides in-memory implementations of the repository
// interfaces for service and handler tests. They enforce the same unique
// indexes as the database and return copies, never internal pointers.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"betadmin/internal/apierror"
	"betadmin/internal/model"
	"betadmin/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

func notFound(entity string) error { return fmt.Errorf("%s %w", entity, apierror.ErrNotFound) }

func addToSet(list pq.StringArray, v string) pq.StringArray {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}

func pull(list pq.StringArray, v string) pq.StringArray {
	out := pq.StringArray{}
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

func cloneArray(a pq.StringArray) pq.StringArray {
	out := make(pq.StringArray, len(a))
	copy(out, a)
	return out
}

// ── Users ────────────────────────────────────────────────────────────────────

type Users struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*model.User
}

var _ repository.UserRepository = (*Users)(nil)

func NewUsers() *Users { return &Users{rows: make(map[uuid.UUID]*model.User)} }

func copyUser(u *model.User) *model.User {
	c := *u
	c.Permissions = cloneArray(u.Permissions)
	c.AssignedCenters = cloneArray(u.AssignedCenters)
	if u.AssignedTaquilla != nil {
		id := *u.AssignedTaquilla
		c.AssignedTaquilla = &id
	}
	return &c
}

func (r *Users) conflicts(u *model.User) bool {
	for id, other := range r.rows {
		if id != u.ID && (other.Email == u.Email || other.Username == u.Username) {
			return true
		}
	}
	return false
}

func (r *Users) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if r.conflicts(u) {
		return apierror.ErrCredentialConflict
	}
	if u.Permissions == nil {
		u.Permissions = pq.StringArray{}
	}
	if u.AssignedCenters == nil {
		u.AssignedCenters = pq.StringArray{}
	}
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	r.rows[u.ID] = copyUser(u)
	return nil
}

func (r *Users) find(match func(*model.User) bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, notFound("usuario")
}

func (r *Users) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == id })
}

func (r *Users) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email })
}

func (r *Users) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Username == username })
}

func (r *Users) FindByIdentifier(_ context.Context, identifier string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == identifier || u.Username == identifier })
}

func (r *Users) list(match func(*model.User) bool) []model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.User{}
	for _, u := range r.rows {
		if match(u) {
			out = append(out, *copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (r *Users) List(_ context.Context) ([]model.User, error) {
	return r.list(func(*model.User) bool { return true }), nil
}

func (r *Users) ListByCenters(_ context.Context, centerIDs []uuid.UUID) ([]model.User, error) {
	return r.list(func(u *model.User) bool {
		for _, id := range centerIDs {
			if u.HasCenter(id) {
				return true
			}
		}
		return false
	}), nil
}

func (r *Users) mutate(id uuid.UUID, fn func(u *model.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return notFound("usuario")
	}
	if err := fn(u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (r *Users) Update(_ context.Context, in *model.User) error {
	r.mu.Lock()
	if _, ok := r.rows[in.ID]; ok && r.conflicts(in) {
		r.mu.Unlock()
		return apierror.ErrCredentialConflict
	}
	r.mu.Unlock()
	return r.mutate(in.ID, func(u *model.User) error {
		u.Username, u.Email = in.Username, in.Email
		return nil
	})
}

func (r *Users) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	return r.mutate(id, func(u *model.User) error { u.PasswordHash = hash; return nil })
}

func (r *Users) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return notFound("usuario")
	}
	delete(r.rows, id)
	return nil
}

func (r *Users) AddPermission(_ context.Context, id uuid.UUID, permission string) error {
	return r.mutate(id, func(u *model.User) error { u.Permissions = addToSet(u.Permissions, permission); return nil })
}

func (r *Users) RemovePermission(_ context.Context, id uuid.UUID, permission string) error {
	return r.mutate(id, func(u *model.User) error { u.Permissions = pull(u.Permissions, permission); return nil })
}

func (r *Users) ChangeRole(_ context.Context, id uuid.UUID, role string, permissions []string) error {
	return r.mutate(id, func(u *model.User) error {
		u.Role = role
		u.Permissions = cloneArray(permissions)
		return nil
	})
}

func (r *Users) AssignCenter(_ context.Context, _ *gorm.DB, id, centerID uuid.UUID) error {
	return r.mutate(id, func(u *model.User) error {
		u.AssignedCenters = addToSet(u.AssignedCenters, centerID.String())
		return nil
	})
}

func (r *Users) UnassignCenter(_ context.Context, _ *gorm.DB, id, centerID uuid.UUID) error {
	return r.mutate(id, func(u *model.User) error {
		u.AssignedCenters = pull(u.AssignedCenters, centerID.String())
		return nil
	})
}

func (r *Users) AssignTaquilla(_ context.Context, _ *gorm.DB, id, taquillaID uuid.UUID) error {
	return r.mutate(id, func(u *model.User) error { u.AssignedTaquilla = &taquillaID; return nil })
}

func (r *Users) UnassignTaquilla(_ context.Context, _ *gorm.DB, id, taquillaID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.rows[id]; ok && u.AssignedTaquilla != nil && *u.AssignedTaquilla == taquillaID {
		u.AssignedTaquilla = nil
	}
	return nil
}

func (r *Users) ClearTaquilla(_ context.Context, _ *gorm.DB, taquillaID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if u.AssignedTaquilla != nil && *u.AssignedTaquilla == taquillaID {
			u.AssignedTaquilla = nil
		}
	}
	return nil
}

// ── Betting centers ──────────────────────────────────────────────────────────

type Centers struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*model.BettingCenter
}

var _ repository.BettingCenterRepository = (*Centers)(nil)

func NewCenters() *Centers { return &Centers{rows: make(map[uuid.UUID]*model.BettingCenter)} }

func copyCenter(c *model.BettingCenter) *model.BettingCenter {
	out := *c
	out.Taquillas = cloneArray(c.Taquillas)
	out.AssociatedUsers = cloneArray(c.AssociatedUsers)
	return &out
}

func (r *Centers) nameTaken(id uuid.UUID, name string) bool {
	for otherID, c := range r.rows {
		if otherID != id && c.Name == name {
			return true
		}
	}
	return false
}

func (r *Centers) Create(_ context.Context, _ *gorm.DB, c *model.BettingCenter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if r.nameTaken(c.ID, c.Name) {
		return apierror.ErrNameConflict
	}
	if c.Taquillas == nil {
		c.Taquillas = pq.StringArray{}
	}
	if c.AssociatedUsers == nil {
		c.AssociatedUsers = pq.StringArray{}
	}
	c.CreatedAt, c.UpdatedAt = time.Now(), time.Now()
	r.rows[c.ID] = copyCenter(c)
	return nil
}

func (r *Centers) FindByID(_ context.Context, id uuid.UUID) (*model.BettingCenter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return nil, notFound("centro de apuestas")
	}
	return copyCenter(c), nil
}

func (r *Centers) FindByName(_ context.Context, name string) (*model.BettingCenter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.Name == name {
			return copyCenter(c), nil
		}
	}
	return nil, notFound("centro de apuestas")
}

func (r *Centers) mutate(id uuid.UUID, fn func(c *model.BettingCenter)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return notFound("centro de apuestas")
	}
	fn(c)
	c.UpdatedAt = time.Now()
	return nil
}

func (r *Centers) Update(_ context.Context, in *model.BettingCenter) error {
	r.mu.Lock()
	if r.nameTaken(in.ID, in.Name) {
		r.mu.Unlock()
		return apierror.ErrNameConflict
	}
	r.mu.Unlock()
	return r.mutate(in.ID, func(c *model.BettingCenter) { c.Name, c.Address = in.Name, in.Address })
}

func (r *Centers) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return notFound("centro de apuestas")
	}
	delete(r.rows, id)
	return nil
}

func (r *Centers) AddTaquilla(_ context.Context, _ *gorm.DB, id, taquillaID uuid.UUID) error {
	return r.mutate(id, func(c *model.BettingCenter) { c.Taquillas = addToSet(c.Taquillas, taquillaID.String()) })
}

func (r *Centers) RemoveTaquilla(_ context.Context, _ *gorm.DB, id, taquillaID uuid.UUID) error {
	return r.mutate(id, func(c *model.BettingCenter) { c.Taquillas = pull(c.Taquillas, taquillaID.String()) })
}

func (r *Centers) AssociateUser(_ context.Context, _ *gorm.DB, id, userID uuid.UUID) error {
	return r.mutate(id, func(c *model.BettingCenter) {
		c.AssociatedUsers = addToSet(c.AssociatedUsers, userID.String())
	})
}

func (r *Centers) DisassociateUser(_ context.Context, _ *gorm.DB, id, userID uuid.UUID) error {
	return r.mutate(id, func(c *model.BettingCenter) {
		c.AssociatedUsers = pull(c.AssociatedUsers, userID.String())
	})
}

func (r *Centers) ChangeAdmin(_ context.Context, _ *gorm.DB, id, newAdminID uuid.UUID) error {
	return r.mutate(id, func(c *model.BettingCenter) { c.AdminID = newAdminID })
}

func (r *Centers) list(match func(*model.BettingCenter) bool) []model.BettingCenter {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.BettingCenter{}
	for _, c := range r.rows {
		if match(c) {
			out = append(out, *copyCenter(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Centers) ListByAdmin(_ context.Context, adminID uuid.UUID) ([]model.BettingCenter, error) {
	return r.list(func(c *model.BettingCenter) bool { return c.AdminID == adminID }), nil
}

func (r *Centers) ListAll(_ context.Context) ([]model.BettingCenter, error) {
	return r.list(func(*model.BettingCenter) bool { return true }), nil
}

// ── Taquillas ────────────────────────────────────────────────────────────────

type Taquillas struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*model.Taquilla
}

var _ repository.TaquillaRepository = (*Taquillas)(nil)

func NewTaquillas() *Taquillas { return &Taquillas{rows: make(map[uuid.UUID]*model.Taquilla)} }

func copyTaquilla(t *model.Taquilla) *model.Taquilla {
	out := *t
	if t.AssignedUserID != nil {
		id := *t.AssignedUserID
		out.AssignedUserID = &id
	}
	return &out
}

func (r *Taquillas) numberTaken(t *model.Taquilla) bool {
	for id, other := range r.rows {
		if id != t.ID && other.Number == t.Number && other.BettingCenterID == t.BettingCenterID {
			return true
		}
	}
	return false
}

func (r *Taquillas) Create(_ context.Context, _ *gorm.DB, t *model.Taquilla) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if r.numberTaken(t) {
		return apierror.ErrNumberConflict
	}
	if t.Status == "" {
		t.Status = model.TaquillaActive
	}
	t.CreatedAt, t.UpdatedAt = time.Now(), time.Now()
	r.rows[t.ID] = copyTaquilla(t)
	return nil
}

func (r *Taquillas) FindByID(_ context.Context, id uuid.UUID) (*model.Taquilla, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	if !ok {
		return nil, notFound("taquilla")
	}
	return copyTaquilla(t), nil
}

func (r *Taquillas) list(match func(*model.Taquilla) bool) []model.Taquilla {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Taquilla{}
	for _, t := range r.rows {
		if match(t) {
			out = append(out, *copyTaquilla(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (r *Taquillas) ListByCenter(_ context.Context, centerID uuid.UUID) ([]model.Taquilla, error) {
	return r.list(func(t *model.Taquilla) bool { return t.BettingCenterID == centerID }), nil
}

func (r *Taquillas) ListActiveByCenter(_ context.Context, centerID uuid.UUID) ([]model.Taquilla, error) {
	return r.list(func(t *model.Taquilla) bool {
		return t.BettingCenterID == centerID && t.Status == model.TaquillaActive
	}), nil
}

func (r *Taquillas) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Taquilla, error) {
	return r.list(func(t *model.Taquilla) bool {
		return t.AssignedUserID != nil && *t.AssignedUserID == userID
	}), nil
}

func (r *Taquillas) mutate(id uuid.UUID, fn func(t *model.Taquilla)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	if !ok {
		return notFound("taquilla")
	}
	fn(t)
	t.UpdatedAt = time.Now()
	return nil
}

func (r *Taquillas) Update(_ context.Context, in *model.Taquilla) error {
	r.mu.Lock()
	if cur, ok := r.rows[in.ID]; ok {
		candidate := *in
		candidate.BettingCenterID = cur.BettingCenterID
		if r.numberTaken(&candidate) {
			r.mu.Unlock()
			return apierror.ErrNumberConflict
		}
	}
	r.mu.Unlock()
	return r.mutate(in.ID, func(t *model.Taquilla) { t.Number, t.Status = in.Number, in.Status })
}

func (r *Taquillas) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return notFound("taquilla")
	}
	delete(r.rows, id)
	return nil
}

func (r *Taquillas) AssignUser(_ context.Context, _ *gorm.DB, id, userID uuid.UUID) error {
	return r.mutate(id, func(t *model.Taquilla) { t.AssignedUserID = &userID })
}

func (r *Taquillas) UnassignUser(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	return r.mutate(id, func(t *model.Taquilla) { t.AssignedUserID = nil })
}

func (r *Taquillas) ChangeStatus(_ context.Context, id uuid.UUID, status string) error {
	return r.mutate(id, func(t *model.Taquilla) { t.Status = status })
}

// ── Permissions ──────────────────────────────────────────────────────────────

type Permissions struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*model.Permission
}

var _ repository.PermissionRepository = (*Permissions)(nil)

func NewPermissions() *Permissions { return &Permissions{rows: make(map[uuid.UUID]*model.Permission)} }

func (r *Permissions) nameTaken(id uuid.UUID, name string) bool {
	for otherID, p := range r.rows {
		if otherID != id && p.Name == name {
			return true
		}
	}
	return false
}

func (r *Permissions) Create(_ context.Context, p *model.Permission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if r.nameTaken(p.ID, p.Name) {
		return apierror.ErrNameConflict
	}
	c := *p
	r.rows[p.ID] = &c
	return nil
}

func (r *Permissions) FindByID(_ context.Context, id uuid.UUID) (*model.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, notFound("permiso")
	}
	c := *p
	return &c, nil
}

func (r *Permissions) FindByName(_ context.Context, name string) (*model.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.Name == name {
			c := *p
			return &c, nil
		}
	}
	return nil, notFound("permiso")
}

func (r *Permissions) list(match func(*model.Permission) bool) []model.Permission {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Permission{}
	for _, p := range r.rows {
		if match(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Permissions) List(_ context.Context) ([]model.Permission, error) {
	return r.list(func(*model.Permission) bool { return true }), nil
}

func (r *Permissions) ListByNames(_ context.Context, names []string) ([]model.Permission, error) {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return r.list(func(p *model.Permission) bool { return set[p.Name] }), nil
}

func (r *Permissions) Update(_ context.Context, in *model.Permission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[in.ID]
	if !ok {
		return notFound("permiso")
	}
	if r.nameTaken(in.ID, in.Name) {
		return apierror.ErrNameConflict
	}
	p.Name, p.Description = in.Name, in.Description
	return nil
}

func (r *Permissions) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return notFound("permiso")
	}
	delete(r.rows, id)
	return nil
}

// ── Role defaults ────────────────────────────────────────────────────────────

type RoleDefaults struct {
	mu   sync.Mutex
	rows map[string]pq.StringArray
}

var _ repository.RoleDefaultsRepository = (*RoleDefaults)(nil)

func NewRoleDefaults() *RoleDefaults { return &RoleDefaults{rows: make(map[string]pq.StringArray)} }

func (r *RoleDefaults) Get(_ context.Context, role string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	perms, ok := r.rows[role]
	if !ok {
		return []string{}, nil
	}
	return []string(cloneArray(perms)), nil
}

func (r *RoleDefaults) Set(_ context.Context, role string, permissions []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[role] = cloneArray(permissions)
	return nil
}

func (r *RoleDefaults) List(_ context.Context) ([]model.RoleDefaultPermissions, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.RoleDefaultPermissions, 0, len(r.rows))
	for role, perms := range r.rows {
		out = append(out, model.RoleDefaultPermissions{Role: role, Permissions: cloneArray(perms)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out, nil
}

func (r *RoleDefaults) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil
}

// ── Configurations ───────────────────────────────────────────────────────────

type Configurations struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*model.Configuration // keyed by center id
}

var _ repository.ConfigurationRepository = (*Configurations)(nil)

func NewConfigurations() *Configurations {
	return &Configurations{rows: make(map[uuid.UUID]*model.Configuration)}
}

func (r *Configurations) Create(_ context.Context, c *model.Configuration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[c.CenterID]; ok {
		return apierror.ErrConflict
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt, c.UpdatedAt = time.Now(), time.Now()
	cp := *c
	r.rows[c.CenterID] = &cp
	return nil
}

func (r *Configurations) FindByCenter(_ context.Context, centerID uuid.UUID) (*model.Configuration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[centerID]
	if !ok {
		return nil, notFound("configuracion")
	}
	cp := *c
	return &cp, nil
}

func (r *Configurations) Update(_ context.Context, c *model.Configuration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[c.CenterID]; !ok {
		return notFound("configuracion")
	}
	c.UpdatedAt = time.Now()
	cp := *c
	r.rows[c.CenterID] = &cp
	return nil
}

func (r *Configurations) DeleteByCenter(_ context.Context, centerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[centerID]; !ok {
		return notFound("configuracion")
	}
	delete(r.rows, centerID)
	return nil
}
