package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/rl1809/counter-pos/internal/adapter/handler"
)

type simulator struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger

	mu   sync.Mutex
	sold map[int64]int

	confirmed atomic.Int32
	cancelled atomic.Int32
	rejected  atomic.Int32
}

func main() {
	addr := pflag.String("addr", "http://localhost:8080", "counter-pos HTTP base URL")
	operators := pflag.Int("operators", 8, "concurrent operators")
	billsPerOperator := pflag.Int("bills", 20, "bills each operator rings up")
	itemCount := pflag.Int("items", 5, "items seeded for the run")
	initialStock := pflag.Int("stock", 30, "starting stock per seeded item")
	pflag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	sim := &simulator{
		baseURL: *addr,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
		sold:    make(map[int64]int),
	}

	// Seed items for this run
	run := time.Now().Unix()
	start := make(map[int64]int)
	ids := make([]int64, 0, *itemCount)
	for i := 0; i < *itemCount; i++ {
		var resp handler.Response
		req := handler.ItemRequest{
			Name:  fmt.Sprintf("billsim-%d-%d", run, i),
			Price: fmt.Sprintf("%d.50", i+1),
			Stock: fmt.Sprint(*initialStock),
		}
		if err := sim.call(http.MethodPost, "/api/items", req, &resp); err != nil || resp.Item == nil {
			logger.Fatal("failed to seed item", zap.Error(err))
		}
		ids = append(ids, resp.Item.ID)
		start[resp.Item.ID] = *initialStock
	}

	var wg sync.WaitGroup
	began := time.Now()

	for op := 0; op < *operators; op++ {
		wg.Add(1)
		go func(op int) {
			defer wg.Done()
			for b := 0; b < *billsPerOperator; b++ {
				sim.ringUp(op, ids)
			}
		}(op)
	}

	wg.Wait()
	elapsed := time.Since(began)

	// Verify final stock
	var items handler.Response
	if err := sim.call(http.MethodGet, "/api/items", nil, &items); err != nil {
		logger.Fatal("failed to list items", zap.Error(err))
	}

	fmt.Println("========== BILLING SIMULATION RESULTS ==========")
	fmt.Printf("Operators:        %d\n", *operators)
	fmt.Printf("Bills confirmed:  %d\n", sim.confirmed.Load())
	fmt.Printf("Bills cancelled:  %d\n", sim.cancelled.Load())
	fmt.Printf("Rejected adds:    %d\n", sim.rejected.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("================================================")

	failed := false
	for _, it := range items.Items {
		initial, ok := start[it.ID]
		if !ok {
			continue
		}
		want := initial - sim.sold[it.ID]
		if it.Stock != want {
			failed = true
			fmt.Printf("FAIL: %s stock %d, expected %d (sold %d)\n", it.Name, it.Stock, want, sim.sold[it.ID])
		} else {
			fmt.Printf("PASS: %s stock %d (sold %d)\n", it.Name, it.Stock, sim.sold[it.ID])
		}
	}
	if failed {
		os.Exit(1)
	}
}

// ringUp drives one bill from open to confirm or cancel.
func (s *simulator) ringUp(op int, ids []int64) {
	var opened handler.Response
	if err := s.call(http.MethodPost, "/api/bills", nil, &opened); err != nil || opened.Bill == nil {
		s.logger.Warn("open bill failed", zap.Int("operator", op), zap.Error(err))
		return
	}
	billID := opened.Bill.ID
	lines := 0

	for step := 0; step < 3+rand.IntN(8); step++ {
		var resp handler.Response
		var err error

		switch r := rand.IntN(10); {
		case r < 6 || lines == 0:
			id := ids[rand.IntN(len(ids))]
			err = s.call(http.MethodPost, "/api/bills/"+billID+"/items", handler.AddItemRequest{InventoryID: id}, &resp)
		case r < 8:
			err = s.call(http.MethodPost, fmt.Sprintf("/api/bills/%s/lines/%d/increment", billID, rand.IntN(lines)), nil, &resp)
		default:
			err = s.call(http.MethodDelete, fmt.Sprintf("/api/bills/%s/lines/%d", billID, rand.IntN(lines)), nil, &resp)
		}

		if err != nil {
			s.rejected.Add(1)
			continue
		}
		if resp.Bill != nil {
			lines = len(resp.Bill.Lines)
		}
	}

	if rand.IntN(4) == 0 {
		if err := s.call(http.MethodPost, "/api/bills/"+billID+"/cancel", nil, nil); err == nil {
			s.cancelled.Add(1)
		}
		return
	}

	var confirmed handler.Response
	if err := s.call(http.MethodPost, "/api/bills/"+billID+"/confirm", nil, &confirmed); err != nil {
		// an empty bill cannot be confirmed
		s.call(http.MethodPost, "/api/bills/"+billID+"/cancel", nil, nil)
		s.cancelled.Add(1)
		return
	}

	s.mu.Lock()
	for _, l := range confirmed.Receipt.Items {
		s.sold[l.InventoryID] += l.Quantity
	}
	s.mu.Unlock()
	s.confirmed.Add(1)
}

func (s *simulator) call(method, path string, body interface{}, out *handler.Response) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, s.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var decoded handler.Response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	if !decoded.Success {
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, decoded.Message)
	}
	if out != nil {
		*out = decoded
	}
	return nil
}
