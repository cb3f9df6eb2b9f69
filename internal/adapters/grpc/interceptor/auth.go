// Package interceptor は gRPC サーバー用の認証・ログ出力 interceptor を提供します。
package interceptor

import (
	"context"
	"errors"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/hrlink/internal/core/contract"
)

var (
	// ErrMissingToken は authorization ヘッダーが無い場合に返却されます。
	ErrMissingToken = errors.New("auth: missing bearer token")
	// ErrInvalidToken はトークンの検証に失敗した場合に返却されます。
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Claims はアクセストークンのクレームです。sub が利用者 ID です。
type Claims struct {
	AccountType string `json:"account_type"`
	CompanyID   string `json:"company_id,omitempty"`
	jwtv5.RegisteredClaims
}

type actorContextKey struct{}

// WithActor は actor をコンテキストに格納します。
func WithActor(ctx context.Context, actor contract.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext はコンテキストから actor を取り出します。
func ActorFromContext(ctx context.Context) (contract.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(contract.Actor)
	return actor, ok
}

// Authenticator は HS256 で署名された Bearer トークンを検証します。
type Authenticator struct {
	secret []byte
	issuer string
	public map[string]struct{}
	now    func() time.Time
}

// NewAuthenticator は Authenticator を生成します。publicMethods に含まれるメソッドは認証しません。
func NewAuthenticator(secret, issuer string, publicMethods ...string) *Authenticator {
	public := make(map[string]struct{}, len(publicMethods))
	for _, m := range publicMethods {
		public[m] = struct{}{}
	}
	return &Authenticator{
		secret: []byte(secret),
		issuer: issuer,
		public: public,
		now:    time.Now,
	}
}

// Sign は actor を表すトークンを発行します。
func (a *Authenticator) Sign(actor contract.Actor, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		AccountType: string(actor.AccountType),
		CompanyID:   actor.CompanyID,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   actor.UserID,
			Issuer:    a.issuer,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse はトークンを検証し actor に変換します。
func (a *Authenticator) Parse(token string) (contract.Actor, error) {
	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwtv5.WithIssuer(a.issuer))
	}

	var claims Claims
	parsed, err := jwtv5.ParseWithClaims(token, &claims, func(*jwtv5.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return contract.Actor{}, ErrInvalidToken
	}

	actor := contract.Actor{
		UserID:      claims.Subject,
		AccountType: contract.AccountType(claims.AccountType),
		CompanyID:   claims.CompanyID,
	}

	switch actor.AccountType {
	case contract.AccountTypePersonal:
		if actor.UserID == "" {
			return contract.Actor{}, ErrInvalidToken
		}
	case contract.AccountTypeCompany:
		if actor.UserID == "" || actor.CompanyID == "" {
			return contract.Actor{}, ErrInvalidToken
		}
	default:
		// system は内部ジョブ専用
		return contract.Actor{}, ErrInvalidToken
	}
	return actor, nil
}

// Unary は authorization メタデータを検証し、actor をコンテキストに格納する interceptor を返します。
func (a *Authenticator) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if _, ok := a.public[info.FullMethod]; ok {
			return handler(ctx, req)
		}

		token, err := bearerToken(ctx)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		actor, err := a.Parse(token)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		return handler(WithActor(ctx, actor), req)
	}
}

func bearerToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", ErrMissingToken
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return "", ErrMissingToken
	}

	const prefix = "bearer "
	raw := strings.TrimSpace(values[0])
	if len(raw) <= len(prefix) || !strings.EqualFold(raw[:len(prefix)], prefix) {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(raw[len(prefix):]), nil
}
