package backend

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/orderdesk/crm-console/internal/core/domain"
)

// channelPrefixes drive external order ID generation, matching the formats the
// real marketplaces use.
var channelPrefixes = map[domain.Channel]string{
	domain.ChannelAmazon:   "AMZ",
	domain.ChannelFlipkart: "FK",
	domain.ChannelWebsite:  "WEB",
}

var sampleCustomers = []struct {
	name  string
	email string
	phone string
}{
	{"Priya Sharma", "priya.sharma@example.com", "+91-98100-11001"},
	{"Rahul Verma", "rahul.verma@example.com", "+91-98100-11002"},
	{"Ananya Iyer", "ananya.iyer@example.com", "+91-98100-11003"},
	{"Vikram Singh", "vikram.singh@example.com", "+91-98100-11004"},
	{"Meera Nair", "meera.nair@example.com", "+91-98100-11005"},
	{"Arjun Patel", "arjun.patel@example.com", "+91-98100-11006"},
}

var sampleProducts = []struct {
	name  string
	sku   string
	price float64
}{
	{"Gold Plated Pendant", "PDT-GLD-001", 1299},
	{"Silver Hoop Earrings", "EAR-SLV-014", 899},
	{"Rose Gold Bracelet", "BRC-RGD-007", 1799},
	{"Pearl Stud Earrings", "EAR-PRL-021", 649},
	{"Layered Chain Necklace", "NCK-LYR-003", 1499},
}

// simulator fabricates channel orders in place of real marketplace APIs.
// External IDs are sequential per channel so a sync never collides with
// itself; the store's dedupe guard handles everything else.
type simulator struct {
	seq map[domain.Channel]*atomic.Int64

	mu  sync.Mutex // rand.Rand is not goroutine safe
	rng *rand.Rand
}

func newSimulator(seed uint64) *simulator {
	seqs := make(map[domain.Channel]*atomic.Int64, len(domain.Channels))
	for _, ch := range domain.Channels {
		seqs[ch] = &atomic.Int64{}
	}
	return &simulator{
		seq: seqs,
		rng: rand.New(rand.NewSource(int64(seed))),
	}
}

// nextOrder fabricates one order for the channel. New imports always arrive
// as PENDING.
func (sim *simulator) nextOrder(ch domain.Channel) *domain.Order {
	sim.mu.Lock()
	defer sim.mu.Unlock()

	n := sim.seq[ch].Add(1)
	customer := sampleCustomers[sim.rng.Intn(len(sampleCustomers))]

	itemCount := 1 + sim.rng.Intn(3)
	items := make([]domain.OrderItem, 0, itemCount)
	var total float64
	for i := 0; i < itemCount; i++ {
		product := sampleProducts[sim.rng.Intn(len(sampleProducts))]
		qty := 1 + sim.rng.Intn(2)
		line := domain.OrderItem{
			ID:          uuid.NewString(),
			ProductName: product.name,
			SKU:         product.sku,
			Quantity:    qty,
			UnitPrice:   product.price,
			TotalPrice:  product.price * float64(qty),
		}
		total += line.TotalPrice
		items = append(items, line)
	}

	now := time.Now().UTC()
	orderedAt := now.Add(-time.Duration(sim.rng.Intn(72)) * time.Hour)
	return &domain.Order{
		ID:              uuid.NewString(),
		ExternalOrderID: fmt.Sprintf("%s-%06d", channelPrefixes[ch], n),
		Channel:         ch,
		Status:          domain.StatusPending,
		CustomerName:    customer.name,
		CustomerEmail:   customer.email,
		CustomerPhone:   customer.phone,
		ShippingAddress: "221B Residency Road, Bengaluru, KA 560025",
		TotalAmount:     total,
		Currency:        "INR",
		Metadata:        map[string]any{"source": "channel-sync"},
		OrderedAt:       orderedAt,
		UpdatedAt:       now,
		Items:           items,
	}
}

func (sim *simulator) batchSize() int {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	return 1 + sim.rng.Intn(4)
}

// syncChannels imports a small batch from every channel and returns new-order
// counts keyed by channel name.
func (s *Server) syncChannels() map[string]int {
	results := make(map[string]int, len(domain.Channels))
	for _, ch := range domain.Channels {
		count := s.sim.batchSize()
		imported := 0
		for i := 0; i < count; i++ {
			if s.store.insertOrder(s.sim.nextOrder(ch)) {
				imported++
			}
		}
		results[string(ch)] = imported
	}
	return results
}

// seedOrders populates the store with a spread of orders across channels and
// non-terminal lifecycle stages so the console has data on first run.
func (s *Server) seedOrders(count int) {
	stages := []domain.OrderStatus{
		domain.StatusPending,
		domain.StatusConfirmed,
		domain.StatusProcessing,
		domain.StatusShipped,
		domain.StatusDelivered,
	}
	for i := 0; i < count; i++ {
		ch := domain.Channels[i%len(domain.Channels)]
		order := s.sim.nextOrder(ch)
		order.Status = stages[i%len(stages)]
		s.store.insertOrder(order)
	}
}
