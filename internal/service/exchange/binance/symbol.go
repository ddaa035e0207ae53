package binance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KNICEX/signal-monitor/internal/service/exchange"
	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// 已下架或杠杆代币, 仍可能查到历史价格
var binanceOverdueSymbolBase = []string{
	"BCC", "VEN", "PAX", "BCHABC", "BCHSV", "WAVES", "BTT", "USDS", "XMR", "NANO", "OMG",
	"MATIC", "FTM", "BUSD", "REN", "BULL", "BEAR", "BTCUP", "BTCDOWN", "ETHUP", "ETHDOWN",
	"BNBUP", "BNBDOWN", "XRPUP", "XRPDOWN", "ADAUP", "ADADOWN", "LINKUP", "LINKDOWN",
	"DOTUP", "DOTDOWN", "SRM", "ANT", "OCEAN", "AGIX", "RNDR", "UST", "MULTI",
}

var _ exchange.SymbolVerifier = (*SymbolService)(nil)

// SymbolService 校验现货交易对是否存在
type SymbolService struct {
	cli         *binance.Client
	overdueBase map[string]struct{}
}

func NewSymbolService(cli *binance.Client) *SymbolService {
	return &SymbolService{
		cli: cli,
		overdueBase: lo.SliceToMap(binanceOverdueSymbolBase, func(item string) (string, struct{}) {
			return item, struct{}{}
		}),
	}
}

// Verify returns the last traded price of ins, or ErrUnknownSymbol when
// Binance does not list it.
func (svc *SymbolService) Verify(ctx context.Context, ins exchange.Instrument) (decimal.Decimal, error) {
	if svc.overdue(ins.Symbol) {
		return decimal.Zero, fmt.Errorf("%w: %s is delisted", exchange.ErrUnknownSymbol, ins.Symbol)
	}
	s, err := svc.cli.NewListPricesService().Symbol(ins.Symbol).Do(ctx)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) && apiErr.Code == codeInvalidSymbol {
			return decimal.Zero, errors.Join(exchange.ErrUnknownSymbol, err)
		}
		return decimal.Zero, err
	}
	if len(s) == 0 {
		return decimal.Zero, fmt.Errorf("%w: %s", exchange.ErrUnknownSymbol, ins.Symbol)
	}
	return decimal.NewFromString(s[0].Price)
}

func (svc *SymbolService) overdue(symbol string) bool {
	for _, quote := range []string{"USDT", "BTC", "ETH"} {
		if base, ok := strings.CutSuffix(symbol, quote); ok {
			if _, ok := svc.overdueBase[base]; ok {
				return true
			}
		}
	}
	return false
}
