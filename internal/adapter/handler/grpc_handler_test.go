package handler

import (
	"context"
	"net"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func newTestClient(t *testing.T) (*CounterClient, int64) {
	t.Helper()
	counter, catalog := newTestServices(t)

	rec, err := catalog.CreateItem(context.Background(), "Pen", decimal.NewFromInt(10), 2)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterCounterServer(srv, NewGRPCHandler(counter, catalog, zap.NewNop()))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewCounterClient(conn), rec.ID
}

func TestGRPC_SaleFlow(t *testing.T) {
	client, penID := newTestClient(t)
	ctx := context.Background()

	opened, err := client.OpenBill(ctx)
	require.NoError(t, err)
	billID := opened.Bill.ID

	_, err = client.AddToBill(ctx, &AddToBillRequest{SessionID: billID, InventoryID: penID})
	require.NoError(t, err)
	bill, err := client.IncrementLine(ctx, &LineRequest{SessionID: billID, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, 2, bill.Bill.Lines[0].Quantity)

	_, err = client.IncrementLine(ctx, &LineRequest{SessionID: billID, Index: 0})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err), "stock exhausted")

	items, err := client.ListItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, items.Items[0].Stock)

	confirmed, err := client.ConfirmSale(ctx, &BillRequest{SessionID: billID})
	require.NoError(t, err)
	assert.Equal(t, "20.00", confirmed.Receipt.Total)
	assert.Contains(t, confirmed.Text, "E - RECEIPT")

	_, err = client.ConfirmSale(ctx, &BillRequest{SessionID: billID})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err), "bill already empty")
}

func TestGRPC_ErrorCodes(t *testing.T) {
	client, penID := newTestClient(t)
	ctx := context.Background()

	_, err := client.CancelSale(ctx, &BillRequest{SessionID: "missing"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	opened, err := client.OpenBill(ctx)
	require.NoError(t, err)

	_, err = client.RemoveLine(ctx, &LineRequest{SessionID: opened.Bill.ID, Index: 3})
	assert.Equal(t, codes.OutOfRange, status.Code(err))

	_, err = client.AddToBill(ctx, &AddToBillRequest{SessionID: opened.Bill.ID, InventoryID: penID, RequestID: "dup"})
	require.NoError(t, err)
	_, err = client.AddToBill(ctx, &AddToBillRequest{SessionID: opened.Bill.ID, InventoryID: penID, RequestID: "dup"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	cancelled, err := client.CancelSale(ctx, &BillRequest{SessionID: opened.Bill.ID})
	require.NoError(t, err)
	assert.Equal(t, opened.Bill.ID, cancelled.SessionID)

	items, err := client.ListItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, items.Items[0].Stock)
}

func TestGRPC_CatalogEdits(t *testing.T) {
	client, penID := newTestClient(t)
	ctx := context.Background()

	created, err := client.CreateItem(ctx, &CreateItemRequest{Name: "Ink", Price: "3.5", Stock: "4"})
	require.NoError(t, err)
	assert.Equal(t, "Ink", created.Item.Name)
	assert.Equal(t, 4, created.Item.Stock)

	updated, err := client.UpdateItem(ctx, &UpdateItemRequest{ID: penID, Name: "Pen", Price: "12", Stock: "9"})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Item.Stock)

	deleted, err := client.DeleteItem(ctx, &DeleteItemRequest{ID: created.Item.ID})
	require.NoError(t, err)
	assert.Equal(t, created.Item.ID, deleted.ID)

	items, err := client.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items.Items, 1)
	assert.Equal(t, 9, items.Items[0].Stock)
}

func TestGRPC_CatalogErrorCodes(t *testing.T) {
	client, penID := newTestClient(t)
	ctx := context.Background()

	_, err := client.CreateItem(ctx, &CreateItemRequest{Name: "Ink", Price: "abc", Stock: "1"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.UpdateItem(ctx, &UpdateItemRequest{ID: penID, Name: "Pen", Price: "1", Stock: "-2"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.UpdateItem(ctx, &UpdateItemRequest{ID: 999, Name: "Ghost", Price: "1", Stock: "1"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.DeleteItem(ctx, &DeleteItemRequest{ID: 999})
	assert.Equal(t, codes.NotFound, status.Code(err))
}
