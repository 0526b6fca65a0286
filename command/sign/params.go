package sign

import (
	"github.com/0xPolygon/polygon-zenith/command/helper"
)

var params = &signParams{}

type signParams struct {
	header helper.HeaderParams
}
