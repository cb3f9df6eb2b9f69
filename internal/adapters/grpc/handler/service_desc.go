package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ContractServiceName は ContractService の完全修飾名です。
const ContractServiceName = "hrlink.contract.v1.ContractService"

// ContractServiceServer は ContractService のサーバー側インターフェースです。
// リクエストとレスポンスはすべて google.protobuf.Struct です。
type ContractServiceServer interface {
	RequestContract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ApproveContract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RejectContract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelContract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RequestTermination(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ApproveTermination(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RejectTermination(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TerminateContract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetContract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SyncPersonToCompany(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SyncCompanyToPerson(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSharingSettings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateSharingSettings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(ContractServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// ContractServiceDesc は ContractService の grpc.ServiceDesc です。
var ContractServiceDesc = grpc.ServiceDesc{
	ServiceName: ContractServiceName,
	HandlerType: (*ContractServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("RequestContract", ContractServiceServer.RequestContract),
		unaryMethod("ApproveContract", ContractServiceServer.ApproveContract),
		unaryMethod("RejectContract", ContractServiceServer.RejectContract),
		unaryMethod("CancelContract", ContractServiceServer.CancelContract),
		unaryMethod("RequestTermination", ContractServiceServer.RequestTermination),
		unaryMethod("ApproveTermination", ContractServiceServer.ApproveTermination),
		unaryMethod("RejectTermination", ContractServiceServer.RejectTermination),
		unaryMethod("TerminateContract", ContractServiceServer.TerminateContract),
		unaryMethod("GetContract", ContractServiceServer.GetContract),
		unaryMethod("SyncPersonToCompany", ContractServiceServer.SyncPersonToCompany),
		unaryMethod("SyncCompanyToPerson", ContractServiceServer.SyncCompanyToPerson),
		unaryMethod("GetSharingSettings", ContractServiceServer.GetSharingSettings),
		unaryMethod("UpdateSharingSettings", ContractServiceServer.UpdateSharingSettings),
		unaryMethod("GetProfile", ContractServiceServer.GetProfile),
		unaryMethod("UpdateProfile", ContractServiceServer.UpdateProfile),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hrlink/contract/v1/contract.proto",
}

// RegisterContractServiceServer は srv を s に登録します。
func RegisterContractServiceServer(s grpc.ServiceRegistrar, srv ContractServiceServer) {
	s.RegisterService(&ContractServiceDesc, srv)
}

// FullMethod はメソッド名から "/<service>/<method>" 形式の名前を返します。
func FullMethod(method string) string {
	return "/" + ContractServiceName + "/" + method
}

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	fullMethod := FullMethod(name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ContractServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(ContractServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
