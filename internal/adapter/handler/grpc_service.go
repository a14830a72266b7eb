package handler

import (
	"context"

	"google.golang.org/grpc"
)

const counterServiceName = "pos.Counter"

type OpenBillRequest struct{}

type BillRequest struct {
	SessionID string `json:"session_id"`
}

type AddToBillRequest struct {
	SessionID   string `json:"session_id"`
	InventoryID int64  `json:"inventory_id"`
	RequestID   string `json:"request_id"`
}

type LineRequest struct {
	SessionID string `json:"session_id"`
	Index     int    `json:"index"`
}

type BillReply struct {
	Bill *BillView `json:"bill"`
}

type ConfirmReply struct {
	Receipt *ReceiptView `json:"receipt"`
	Text    string       `json:"text"`
	Exports []ExportView `json:"exports"`
}

type CancelReply struct {
	SessionID string `json:"session_id"`
}

type ListItemsRequest struct{}

type ListItemsReply struct {
	Items   []ItemView `json:"items"`
	Version uint64     `json:"version"`
}

type CreateItemRequest struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock string `json:"stock"`
}

type UpdateItemRequest struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock string `json:"stock"`
}

type DeleteItemRequest struct {
	ID int64 `json:"id"`
}

type ItemReply struct {
	Item *ItemView `json:"item"`
}

type DeleteItemReply struct {
	ID int64 `json:"id"`
}

type CounterServer interface {
	OpenBill(context.Context, *OpenBillRequest) (*BillReply, error)
	AddToBill(context.Context, *AddToBillRequest) (*BillReply, error)
	IncrementLine(context.Context, *LineRequest) (*BillReply, error)
	RemoveLine(context.Context, *LineRequest) (*BillReply, error)
	ConfirmSale(context.Context, *BillRequest) (*ConfirmReply, error)
	CancelSale(context.Context, *BillRequest) (*CancelReply, error)
	ListItems(context.Context, *ListItemsRequest) (*ListItemsReply, error)
	CreateItem(context.Context, *CreateItemRequest) (*ItemReply, error)
	UpdateItem(context.Context, *UpdateItemRequest) (*ItemReply, error)
	DeleteItem(context.Context, *DeleteItemRequest) (*DeleteItemReply, error)
}

var CounterServiceDesc = grpc.ServiceDesc{
	ServiceName: counterServiceName,
	HandlerType: (*CounterServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("OpenBill", CounterServer.OpenBill),
		unaryMethod("AddToBill", CounterServer.AddToBill),
		unaryMethod("IncrementLine", CounterServer.IncrementLine),
		unaryMethod("RemoveLine", CounterServer.RemoveLine),
		unaryMethod("ConfirmSale", CounterServer.ConfirmSale),
		unaryMethod("CancelSale", CounterServer.CancelSale),
		unaryMethod("ListItems", CounterServer.ListItems),
		unaryMethod("CreateItem", CounterServer.CreateItem),
		unaryMethod("UpdateItem", CounterServer.UpdateItem),
		unaryMethod("DeleteItem", CounterServer.DeleteItem),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pos/counter",
}

func RegisterCounterServer(s grpc.ServiceRegistrar, srv CounterServer) {
	s.RegisterService(&CounterServiceDesc, srv)
}

func unaryMethod[Req, Resp any](name string, call func(CounterServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + counterServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CounterServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(CounterServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// CounterClient calls pos.Counter over a connection using the JSON codec.
type CounterClient struct {
	cc grpc.ClientConnInterface
}

func NewCounterClient(cc grpc.ClientConnInterface) *CounterClient {
	return &CounterClient{cc: cc}
}

func (c *CounterClient) OpenBill(ctx context.Context) (*BillReply, error) {
	out := new(BillReply)
	return out, c.invoke(ctx, "OpenBill", &OpenBillRequest{}, out)
}

func (c *CounterClient) AddToBill(ctx context.Context, in *AddToBillRequest) (*BillReply, error) {
	out := new(BillReply)
	return out, c.invoke(ctx, "AddToBill", in, out)
}

func (c *CounterClient) IncrementLine(ctx context.Context, in *LineRequest) (*BillReply, error) {
	out := new(BillReply)
	return out, c.invoke(ctx, "IncrementLine", in, out)
}

func (c *CounterClient) RemoveLine(ctx context.Context, in *LineRequest) (*BillReply, error) {
	out := new(BillReply)
	return out, c.invoke(ctx, "RemoveLine", in, out)
}

func (c *CounterClient) ConfirmSale(ctx context.Context, in *BillRequest) (*ConfirmReply, error) {
	out := new(ConfirmReply)
	return out, c.invoke(ctx, "ConfirmSale", in, out)
}

func (c *CounterClient) CancelSale(ctx context.Context, in *BillRequest) (*CancelReply, error) {
	out := new(CancelReply)
	return out, c.invoke(ctx, "CancelSale", in, out)
}

func (c *CounterClient) ListItems(ctx context.Context) (*ListItemsReply, error) {
	out := new(ListItemsReply)
	return out, c.invoke(ctx, "ListItems", &ListItemsRequest{}, out)
}

func (c *CounterClient) CreateItem(ctx context.Context, in *CreateItemRequest) (*ItemReply, error) {
	out := new(ItemReply)
	return out, c.invoke(ctx, "CreateItem", in, out)
}

func (c *CounterClient) UpdateItem(ctx context.Context, in *UpdateItemRequest) (*ItemReply, error) {
	out := new(ItemReply)
	return out, c.invoke(ctx, "UpdateItem", in, out)
}

func (c *CounterClient) DeleteItem(ctx context.Context, in *DeleteItemRequest) (*DeleteItemReply, error) {
	out := new(DeleteItemReply)
	return out, c.invoke(ctx, "DeleteItem", in, out)
}

func (c *CounterClient) invoke(ctx context.Context, method string, in, out interface{}) error {
	return c.cc.Invoke(ctx, "/"+counterServiceName+"/"+method, in, out, grpc.CallContentSubtype(CodecName))
}
