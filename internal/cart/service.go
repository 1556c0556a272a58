package cart

import (
	"context"
	"log"
	"sync"
	"time"

	"canteen/internal/models"
)

type Event string

const (
	EventItemAdded   Event = "item_added"
	EventItemRemoved Event = "item_removed"
	EventItemUpdated Event = "item_updated"
	EventCleared     Event = "cleared"
	EventChanged     Event = "changed"
)

// Notice is delivered to subscribers after a cart mutation. Every mutation
// produces its specific event followed by EventChanged, in that order, to
// subscribers in registration order.
type Notice struct {
	UserID     string
	Event      Event
	CartItemID string
}

type subscriber struct {
	id int
	fn func(Notice)
}

// Service owns the live carts, one per user. It is the single source of
// truth; the session store and the mirror document are downstream copies.
type Service struct {
	mu    sync.Mutex
	carts map[string][]models.CartItem

	store  Store
	mirror Mirror

	subMu  sync.Mutex
	subs   []subscriber
	nextID int
}

func NewService(store Store, mirror Mirror) *Service {
	return &Service{
		carts:  make(map[string][]models.CartItem),
		store:  store,
		mirror: mirror,
	}
}

// Subscribe registers a notification callback and returns its cancel
// function. Cancelling is idempotent.
func (s *Service) Subscribe(fn func(Notice)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Service) notify(userID string, event Event, cartItemID string) {
	s.subMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(Notice{UserID: userID, Event: event, CartItemID: cartItemID})
	}
	if event != EventChanged {
		for _, sub := range subs {
			sub.fn(Notice{UserID: userID, Event: EventChanged, CartItemID: cartItemID})
		}
	}
}

// persist writes the session copy synchronously and mirrors the snapshot
// remotely in the background. A mirror failure is logged and dropped; the
// session copy stays authoritative.
func (s *Service) persist(ctx context.Context, userID string, items []models.CartItem) {
	snap := NewSnapshot(userID, items)

	data, err := EncodeSnapshot(snap)
	if err != nil {
		log.Println("[CART] [ERROR] snapshot encode failed:", err)
		return
	}

	if err := s.store.Save(ctx, userID, data); err != nil {
		log.Println("[CART] [ERROR] session save failed:", err)
	}

	if s.mirror == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.mirror.Write(ctx, snap); err != nil {
			log.Println("[CART] [ERROR] mirror write failed:", err)
		}
	}()
}

func (s *Service) itemsCopy(userID string) []models.CartItem {
	items := s.carts[userID]
	copied := make([]models.CartItem, len(items))
	copy(copied, items)
	return copied
}

// Load restores a user's cart from the session store. A corrupt or
// unreadable blob is treated as an empty cart.
func (s *Service) Load(ctx context.Context, userID string) {
	data, err := s.store.Load(ctx, userID)
	if err != nil {
		log.Println("[CART] [ERROR] session load failed:", err)
	}

	var items []models.CartItem
	if len(data) > 0 {
		snap, err := DecodeSnapshot(data)
		if err != nil {
			log.Println("[CART] [ERROR] stored cart unreadable, starting empty:", err)
		} else {
			items = snap.Items
		}
	}

	s.mu.Lock()
	s.carts[userID] = items
	s.mu.Unlock()
}

// MergeRemote folds the mirrored cart into the local one after sign-in.
// When both sides hold the same food item the larger quantity wins, so items
// added offline are never lost; remote-only lines are adopted as-is.
func (s *Service) MergeRemote(ctx context.Context, userID string) error {
	if s.mirror == nil {
		return nil
	}

	snap, err := s.mirror.Read(ctx, userID)
	if err != nil {
		return err
	}
	if snap == nil || len(snap.Items) == 0 {
		return nil
	}

	s.mu.Lock()
	items := s.carts[userID]
	for _, remote := range snap.Items {
		merged := false
		for i := range items {
			if items[i].SameFoodItem(remote) {
				if remote.Quantity > items[i].Quantity {
					items[i].SetQuantity(remote.Quantity)
				}
				merged = true
				break
			}
		}
		if !merged {
			items = append(items, remote)
		}
	}
	s.carts[userID] = items
	snapshot := s.itemsCopy(userID)
	s.mu.Unlock()

	s.persist(ctx, userID, snapshot)
	s.notify(userID, EventChanged, "")
	return nil
}

// AddItem appends a line for the food item, or, when a line for the same
// item already exists, folds the quantity into it instead of duplicating.
func (s *Service) AddItem(ctx context.Context, userID string, item models.FoodItem, quantity int, instructions string) models.CartItem {
	s.mu.Lock()
	items := s.carts[userID]

	var line models.CartItem
	merged := false
	for i := range items {
		if items[i].FoodItem.ID == item.ID {
			items[i].SetQuantity(items[i].Quantity + quantity)
			if instructions != "" {
				items[i].SetSpecialInstructions(instructions)
			}
			line = items[i]
			merged = true
			break
		}
	}
	if !merged {
		line = models.NewCartItem(item, quantity)
		if instructions != "" {
			line.SetSpecialInstructions(instructions)
		}
		items = append(items, line)
	}
	s.carts[userID] = items
	snapshot := s.itemsCopy(userID)
	s.mu.Unlock()

	s.persist(ctx, userID, snapshot)
	s.notify(userID, EventItemAdded, line.CartItemID)
	return line
}

func (s *Service) findLine(userID, cartItemID string) int {
	for i, item := range s.carts[userID] {
		if item.CartItemID == cartItemID {
			return i
		}
	}
	return -1
}

// RemoveItem deletes a line by id. Returns false when the id is unknown.
func (s *Service) RemoveItem(ctx context.Context, userID, cartItemID string) bool {
	s.mu.Lock()
	i := s.findLine(userID, cartItemID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	items := s.carts[userID]
	s.carts[userID] = append(items[:i], items[i+1:]...)
	snapshot := s.itemsCopy(userID)
	s.mu.Unlock()

	s.persist(ctx, userID, snapshot)
	s.notify(userID, EventItemRemoved, cartItemID)
	return true
}

// UpdateQuantity replaces a line's quantity. A quantity of zero or less
// removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, userID, cartItemID string, quantity int) bool {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, cartItemID)
	}

	s.mu.Lock()
	i := s.findLine(userID, cartItemID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.carts[userID][i].SetQuantity(quantity)
	snapshot := s.itemsCopy(userID)
	s.mu.Unlock()

	s.persist(ctx, userID, snapshot)
	s.notify(userID, EventItemUpdated, cartItemID)
	return true
}

func (s *Service) UpdateInstructions(ctx context.Context, userID, cartItemID, instructions string) bool {
	s.mu.Lock()
	i := s.findLine(userID, cartItemID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.carts[userID][i].SetSpecialInstructions(instructions)
	snapshot := s.itemsCopy(userID)
	s.mu.Unlock()

	s.persist(ctx, userID, snapshot)
	s.notify(userID, EventItemUpdated, cartItemID)
	return true
}

// ApplyItemDiscount puts an absolute discount on a line. False when the line
// is unknown or the amount is out of range.
func (s *Service) ApplyItemDiscount(ctx context.Context, userID, cartItemID string, amount float64) bool {
	s.mu.Lock()
	i := s.findLine(userID, cartItemID)
	if i < 0 || !s.carts[userID][i].ApplyDiscount(amount) {
		s.mu.Unlock()
		return false
	}
	snapshot := s.itemsCopy(userID)
	s.mu.Unlock()

	s.persist(ctx, userID, snapshot)
	s.notify(userID, EventItemUpdated, cartItemID)
	return true
}

func (s *Service) ApplyItemPercentageDiscount(ctx context.Context, userID, cartItemID string, pct float64) bool {
	s.mu.Lock()
	i := s.findLine(userID, cartItemID)
	if i < 0 || !s.carts[userID][i].ApplyPercentageDiscount(pct) {
		s.mu.Unlock()
		return false
	}
	snapshot := s.itemsCopy(userID)
	s.mu.Unlock()

	s.persist(ctx, userID, snapshot)
	s.notify(userID, EventItemUpdated, cartItemID)
	return true
}

func (s *Service) RemoveItemDiscount(ctx context.Context, userID, cartItemID string) bool {
	s.mu.Lock()
	i := s.findLine(userID, cartItemID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.carts[userID][i].RemoveDiscount()
	snapshot := s.itemsCopy(userID)
	s.mu.Unlock()

	s.persist(ctx, userID, snapshot)
	s.notify(userID, EventItemUpdated, cartItemID)
	return true
}

// Clear empties the user's cart. Subscribers get the cleared event on top of
// the usual changed event.
func (s *Service) Clear(ctx context.Context, userID string) {
	s.mu.Lock()
	s.carts[userID] = nil
	s.mu.Unlock()

	s.persist(ctx, userID, nil)
	s.notify(userID, EventCleared, "")
}

// Items returns a copy of the user's cart lines.
func (s *Service) Items(userID string) []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemsCopy(userID)
}

// ItemCount is the sum of quantities across all lines.
func (s *Service) ItemCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.carts[userID] {
		count += item.Quantity
	}
	return count
}

// UniqueItemCount is the number of lines.
func (s *Service) UniqueItemCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts[userID])
}

// TotalPrice sums the discounted line totals.
func (s *Service) TotalPrice(userID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, item := range s.carts[userID] {
		total += item.TotalPrice
	}
	return total
}

// OriginalTotalPrice prices the cart at catalog prices, before any discount.
func (s *Service) OriginalTotalPrice(userID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, item := range s.carts[userID] {
		total += item.OriginalSubtotal()
	}
	return total
}

// TotalDiscount is everything the user saves against catalog prices.
func (s *Service) TotalDiscount(userID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, item := range s.carts[userID] {
		total += item.OriginalSubtotal() - item.TotalPrice
	}
	return total
}

// TotalPreparationTime is the slowest line's estimate. Lines cook in
// parallel, so the cart-level figure is a max, not a sum.
func (s *Service) TotalPreparationTime(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	max := 0
	for _, item := range s.carts[userID] {
		if t := item.TotalPreparationTime(); t > max {
			max = t
		}
	}
	return max
}

// ItemsByCategory groups the cart lines by their item category.
func (s *Service) ItemsByCategory(userID string) map[string][]models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	grouped := make(map[string][]models.CartItem)
	for _, item := range s.carts[userID] {
		grouped[item.FoodItem.Category] = append(grouped[item.FoodItem.Category], item)
	}
	return grouped
}
