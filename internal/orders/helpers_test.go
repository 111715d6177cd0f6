package orders

import "github.com/nurserysera/storefront-backend/pkg/types"

func flex(v int64) types.FlexInt { return types.NewFlexInt(v) }
