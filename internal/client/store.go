package client

import (
	"context"
	"slices"
	"sync"
)

// Op names one kind of store operation. At most one call per Op runs at a
// time.
type Op string

const (
	OpCheckAuth          Op = "check_auth"
	OpSignUp             Op = "sign_up"
	OpLogIn              Op = "log_in"
	OpLogOut             Op = "log_out"
	OpUpdateProfile      Op = "update_profile"
	OpToggleFavorite     Op = "toggle_favorite"
	OpFetchProducts      Op = "fetch_products"
	OpAddProduct         Op = "add_product"
	OpUpdateProduct      Op = "update_product"
	OpDeleteProduct      Op = "delete_product"
	OpFetchCart          Op = "fetch_cart"
	OpAddToCart          Op = "add_to_cart"
	OpRemoveFromCart     Op = "remove_from_cart"
	OpUpdateCartQuantity Op = "update_cart_quantity"
)

// MaxQuantity is the largest quantity the server keeps on one cart line.
const MaxQuantity = 1<<31 - 1

// State is a copy of the store contents.
type State struct {
	User     *User
	Products []Product
	Cart     []CartLine
}

// Store mirrors server state for one client session and applies mutations
// speculatively. Slices held by the store are never modified in place, so a
// snapshot is just the previous slice header.
type Store struct {
	api    API
	notify Notifier

	mu       sync.Mutex
	user     *User
	products []Product
	cart     []CartLine
	inFlight map[Op]bool
	closed   bool
}

func NewStore(api API, n Notifier) *Store {
	if n == nil {
		n = discard{}
	}
	return &Store{
		api:      api,
		notify:   n,
		inFlight: make(map[Op]bool),
	}
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		User:     s.user.clone(),
		Products: slices.Clone(s.products),
		Cart:     slices.Clone(s.cart),
	}
}

func (s *Store) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.clone()
}

func (s *Store) Products() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.products)
}

func (s *Store) Cart() []CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cart)
}

func (s *Store) InFlight(op Op) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[op]
}

// Close drops all state. Every later call returns ErrClosed.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.user, s.products, s.cart = nil, nil, nil
}

func (s *Store) begin(op Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.inFlight[op] {
		return ErrBusy
	}
	s.inFlight[op] = true
	return nil
}

func (s *Store) end(op Op) {
	s.mu.Lock()
	delete(s.inFlight, op)
	s.mu.Unlock()
}

// mutation describes one speculative change. apply runs under the lock and
// returns the restore func for its snapshot; commit runs under the lock after
// call succeeded.
type mutation struct {
	op       Op
	apply    func() (restore func())
	call     func(ctx context.Context) error
	commit   func()
	success  string
	fallback string
}

func (s *Store) run(ctx context.Context, m mutation) error {
	if err := s.begin(m.op); err != nil {
		return err
	}
	defer s.end(m.op)

	var restore func()
	if m.apply != nil {
		s.mu.Lock()
		restore = m.apply()
		s.mu.Unlock()
	}

	err := m.call(ctx)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if err != nil {
			return err
		}
		return ErrClosed
	}
	if err != nil {
		if restore != nil {
			restore()
		}
		s.mu.Unlock()
		return s.fail(m.op, err, m.fallback)
	}
	if m.commit != nil {
		m.commit()
	}
	s.mu.Unlock()

	if m.success != "" {
		s.notify.Notify(Notice{Kind: NoticeSuccess, Op: m.op, Message: m.success})
	}
	return nil
}

// fail emits the failure notice. A 401 also forgets the user.
func (s *Store) fail(op Op, err error, fallback string) error {
	if IsUnauthorized(err) {
		s.mu.Lock()
		s.user = nil
		s.mu.Unlock()
		s.notify.Notify(Notice{Kind: NoticeAuthRequired, Op: op, Message: "Please log in to continue"})
		return err
	}
	s.notify.Notify(Notice{Kind: NoticeError, Op: op, Message: userMessage(err, fallback)})
	return err
}

// refuse reports a client-side guard without touching the network.
func (s *Store) refuse(op Op, err error) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	s.notify.Notify(Notice{Kind: NoticeError, Op: op, Message: userMessage(err, err.Error())})
	return err
}

// CheckAuth loads the current user. Any failure silently logs the user out
// locally.
func (s *Store) CheckAuth(ctx context.Context) error {
	if err := s.begin(OpCheckAuth); err != nil {
		return err
	}
	defer s.end(OpCheckAuth)

	u, err := s.api.CheckAuth(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err != nil {
		s.user = nil
		return err
	}
	s.user = u
	return nil
}

func (s *Store) SignUp(ctx context.Context, in SignupInput) error {
	var u *User
	return s.run(ctx, mutation{
		op: OpSignUp,
		call: func(ctx context.Context) (err error) {
			u, err = s.api.SignUp(ctx, in)
			return err
		},
		commit:   func() { s.user = u },
		success:  "Account created successfully",
		fallback: "An unexpected error occurred during signup.",
	})
}

func (s *Store) LogIn(ctx context.Context, email, password string) error {
	var u *User
	return s.run(ctx, mutation{
		op: OpLogIn,
		call: func(ctx context.Context) (err error) {
			u, err = s.api.LogIn(ctx, email, password)
			return err
		},
		commit:   func() { s.user = u },
		success:  "Logged in successfully",
		fallback: "An unexpected error occurred during login.",
	})
}

// LogOut ends the server session and tears the store down.
func (s *Store) LogOut(ctx context.Context) error {
	err := s.run(ctx, mutation{
		op:       OpLogOut,
		call:     s.api.LogOut,
		success:  "Logged out successfully",
		fallback: "Logout failed. Please try again.",
	})
	if err != nil {
		return err
	}
	s.Close()
	return nil
}

func (s *Store) UpdateProfile(ctx context.Context, in ProfileUpdate) error {
	var u *User
	return s.run(ctx, mutation{
		op: OpUpdateProfile,
		apply: func() func() {
			prev := s.user
			if prev == nil {
				return nil
			}
			next := prev.clone()
			if in.FullName != nil {
				next.FullName = *in.FullName
			}
			if in.ProfilePic != nil {
				next.ProfilePic = *in.ProfilePic
			}
			s.user = next
			return func() { s.user = prev }
		},
		call: func(ctx context.Context) (err error) {
			u, err = s.api.UpdateProfile(ctx, in)
			return err
		},
		commit:   func() { s.user = u },
		success:  "Profile updated successfully",
		fallback: "Failed to update profile.",
	})
}

// ToggleFavorite flips membership locally, then settles on the server's
// answer. It reports whether the product ended up a favorite.
func (s *Store) ToggleFavorite(ctx context.Context, productID string) (bool, error) {
	if s.User() == nil {
		return false, s.refuse(OpToggleFavorite, ErrNotLoggedIn)
	}

	var isFav bool
	err := s.run(ctx, mutation{
		op: OpToggleFavorite,
		apply: func() func() {
			prev := s.user
			if prev == nil {
				return nil
			}
			s.user = withFavorite(prev, productID, !prev.IsFavorite(productID))
			return func() { s.user = prev }
		},
		call: func(ctx context.Context) (err error) {
			isFav, err = s.api.ToggleFavorite(ctx, productID)
			return err
		},
		commit: func() {
			if s.user != nil && s.user.IsFavorite(productID) != isFav {
				s.user = withFavorite(s.user, productID, isFav)
			}
		},
		success:  "Favorite status updated",
		fallback: "Failed to update favorites.",
	})
	return isFav, err
}

func withFavorite(u *User, productID string, on bool) *User {
	next := u.clone()
	next.Favorites = slices.DeleteFunc(next.Favorites, func(id string) bool { return id == productID })
	if on {
		next.Favorites = append(next.Favorites, productID)
	}
	return next
}

func (s *Store) FetchProducts(ctx context.Context) error {
	var products []Product
	return s.run(ctx, mutation{
		op: OpFetchProducts,
		call: func(ctx context.Context) (err error) {
			products, err = s.api.ListProducts(ctx)
			return err
		},
		commit: func() {
			s.products = slices.DeleteFunc(products, func(p Product) bool { return p.ID == "" })
		},
		fallback: "Failed to fetch products",
	})
}

// AddProduct shows a placeholder at the head of the catalog until the server
// returns the stored record.
func (s *Store) AddProduct(ctx context.Context, in ProductInput) (*Product, error) {
	var created *Product
	err := s.run(ctx, mutation{
		op: OpAddProduct,
		apply: func() func() {
			prev := s.products
			placeholder := Product{
				Name:        in.Name,
				Description: in.Description,
				Price:       in.Price,
				Ratings:     in.Ratings,
				Image:       in.Image,
			}
			if s.user != nil {
				placeholder.SoldBy = &Seller{ID: s.user.ID, FullName: s.user.FullName}
			}
			s.products = append([]Product{placeholder}, prev...)
			return func() { s.products = prev }
		},
		call: func(ctx context.Context) (err error) {
			created, err = s.api.AddProduct(ctx, in)
			return err
		},
		commit: func() {
			next := slices.DeleteFunc(slices.Clone(s.products), func(p Product) bool { return p.ID == "" })
			s.products = append([]Product{*created}, next...)
		},
		success:  "Product added successfully",
		fallback: "Failed to add product",
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id string, in ProductInput) error {
	var updated *Product
	return s.run(ctx, mutation{
		op: OpUpdateProduct,
		apply: func() func() {
			prev := s.products
			s.products = mapProducts(prev, id, func(p Product) Product {
				p.Name, p.Description, p.Price, p.Ratings, p.Image = in.Name, in.Description, in.Price, in.Ratings, in.Image
				return p
			})
			return func() { s.products = prev }
		},
		call: func(ctx context.Context) (err error) {
			updated, err = s.api.UpdateProduct(ctx, id, in)
			return err
		},
		commit: func() {
			s.products = mapProducts(s.products, id, func(Product) Product { return *updated })
		},
		success:  "Product updated successfully",
		fallback: "Failed to update product",
	})
}

func mapProducts(in []Product, id string, fn func(Product) Product) []Product {
	out := make([]Product, len(in))
	for i, p := range in {
		if p.ID == id {
			p = fn(p)
		}
		out[i] = p
	}
	return out
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	return s.run(ctx, mutation{
		op: OpDeleteProduct,
		apply: func() func() {
			prev := s.products
			s.products = slices.DeleteFunc(slices.Clone(prev), func(p Product) bool { return p.ID == id })
			return func() { s.products = prev }
		},
		call:     func(ctx context.Context) error { return s.api.DeleteProduct(ctx, id) },
		success:  "Product deleted successfully",
		fallback: "Failed to delete product",
	})
}

func (s *Store) FetchCart(ctx context.Context) error {
	var lines []CartLine
	return s.run(ctx, mutation{
		op: OpFetchCart,
		call: func(ctx context.Context) (err error) {
			lines, err = s.api.GetCart(ctx)
			return err
		},
		commit:   func() { s.cart = lines },
		fallback: "Failed to fetch cart items.",
	})
}

// AddToCart refuses the caller's own products and non-positive quantities
// before anything is sent.
func (s *Store) AddToCart(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return s.refuse(OpAddToCart, ErrInvalidQuantity)
	}
	if s.ownsProduct(productID) {
		return s.refuse(OpAddToCart, ErrOwnProduct)
	}
	if quantity > MaxQuantity-s.lineQuantity(productID) {
		return s.refuse(OpAddToCart, ErrQuantityLimit)
	}

	var lines []CartLine
	return s.run(ctx, mutation{
		op: OpAddToCart,
		apply: func() func() {
			prev := s.cart
			s.cart = addLine(prev, s.findProduct(productID), productID, quantity)
			return func() { s.cart = prev }
		},
		call: func(ctx context.Context) (err error) {
			lines, err = s.api.AddToCart(ctx, productID, quantity)
			return err
		},
		commit:   func() { s.cart = lines },
		success:  "Added to cart!",
		fallback: "Could not add to cart.",
	})
}

func (s *Store) ownsProduct(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return false
	}
	p := s.findProduct(productID)
	return p != nil && p.SoldBy != nil && p.SoldBy.ID == s.user.ID
}

func (s *Store) lineQuantity(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.cart {
		if l.ProductID() == productID {
			return l.Quantity
		}
	}
	return 0
}

// findProduct must be called with s.mu held.
func (s *Store) findProduct(id string) *Product {
	for i := range s.products {
		if s.products[i].ID == id {
			p := s.products[i]
			return &p
		}
	}
	return nil
}

func addLine(in []CartLine, p *Product, productID string, quantity int) []CartLine {
	out := slices.Clone(in)
	for i, l := range out {
		if l.ProductID() == productID {
			out[i].Quantity += quantity
			return out
		}
	}
	if p == nil {
		p = &Product{ID: productID}
	}
	return append(out, CartLine{Product: p, Ref: productID, Quantity: quantity})
}

func (s *Store) RemoveFromCart(ctx context.Context, productID string) error {
	var lines []CartLine
	return s.run(ctx, mutation{
		op: OpRemoveFromCart,
		apply: func() func() {
			prev := s.cart
			s.cart = slices.DeleteFunc(slices.Clone(prev), func(l CartLine) bool { return l.ProductID() == productID })
			return func() { s.cart = prev }
		},
		call: func(ctx context.Context) (err error) {
			lines, err = s.api.RemoveFromCart(ctx, productID)
			return err
		},
		commit:   func() { s.cart = lines },
		success:  "Removed from cart.",
		fallback: "Could not remove from cart.",
	})
}

// UpdateCartQuantity sets a line's quantity. Removing a line is RemoveFromCart.
func (s *Store) UpdateCartQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return s.refuse(OpUpdateCartQuantity, ErrInvalidQuantity)
	}
	if quantity > MaxQuantity {
		return s.refuse(OpUpdateCartQuantity, ErrQuantityLimit)
	}
	return s.run(ctx, mutation{
		op: OpUpdateCartQuantity,
		apply: func() func() {
			prev := s.cart
			next := slices.Clone(prev)
			for i := range next {
				if next[i].ProductID() == productID {
					next[i].Quantity = quantity
				}
			}
			s.cart = next
			return func() { s.cart = prev }
		},
		call: func(ctx context.Context) error {
			return s.api.UpdateCartQuantity(ctx, productID, quantity)
		},
		fallback: "Failed to update quantity.",
	})
}
