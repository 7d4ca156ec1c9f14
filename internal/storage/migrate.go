package storage

import (
	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

// legacyDeviceFields were dropped from model.Device and are removed on load.
var legacyDeviceFields = []string{"group"}

// stripLegacyFields removes legacy per-device fields from a stored state blob and drops
// values older clients wrote in the wrong shape: an empty expireDate string and a
// non-boolean isExpired (it is recomputed after load anyway).
// Applying it twice yields the same result as applying it once.
func stripLegacyFields(data []byte) ([]byte, error) {
	var p fastjson.Parser

	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, errors.Wrap(err, "parsing state")
	}

	devices := v.GetArray("devices")
	if len(devices) == 0 {
		return data, nil
	}

	for _, d := range devices {
		if d.Type() != fastjson.TypeObject {
			continue
		}

		for _, field := range legacyDeviceFields {
			d.Del(field)
		}

		if exp := d.Get("expireDate"); exp != nil && exp.Type() == fastjson.TypeString {
			if sb, _ := exp.StringBytes(); len(sb) == 0 {
				d.Del("expireDate")
			}
		}

		if ie := d.Get("isExpired"); ie != nil && ie.Type() != fastjson.TypeTrue && ie.Type() != fastjson.TypeFalse {
			d.Del("isExpired")
		}
	}

	return v.MarshalTo(nil), nil
}
