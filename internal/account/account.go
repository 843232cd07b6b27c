package account

import (
	"context"
	"errors"
	"time"

	goexv2 "github.com/nntaoli-project/goex/v2"
	"github.com/nntaoli-project/goex/v2/model"
)

// 账户快照：余额按需从交易所读取，核心只读不持有

type Balance struct {
	Currency  string
	Total     float64
	Available float64
	Frozen    float64
}

type Service struct {
	prv goexv2.IPrvRest
}

// NewService 创建账户服务，prv是goex私有API客户端
func NewService(prv goexv2.IPrvRest) *Service {
	return &Service{prv: prv}
}

// GetBalance 查询指定币种的账户余额
func (s *Service) GetBalance(ctx context.Context, coin string) (*Balance, error) {
	// goex私有方法没有context，临时用超时控制
	timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	type result struct {
		bal map[string]model.Account
		err error
	}
	ch := make(chan result, 1)

	go func() {
		bal, _, err := s.prv.GetAccount(coin)
		ch <- result{bal, err}
	}()

	select {
	case <-timeoutCtx.Done():
		return nil, timeoutCtx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		acc, ok := r.bal[coin]
		if !ok {
			return nil, errors.New("account info not found for coin " + coin)
		}
		return &Balance{
			Currency:  acc.Coin,
			Total:     acc.Balance,
			Available: acc.AvailableBalance,
			Frozen:    acc.FrozenBalance,
		}, nil
	}
}

// Balance 实现 exchange.AccountProvider，返回可用余额
func (s *Service) Balance(ctx context.Context, ccy string) (float64, error) {
	bal, err := s.GetBalance(ctx, ccy)
	if err != nil {
		return 0, err
	}
	return bal.Available, nil
}
