package dicom

import (
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/jcupitt/godicom/dcmerr"
	"github.com/jcupitt/godicom/dicomio"
	"github.com/jcupitt/godicom/dicomlog"
)

// htmlEncodingNames maps a DICOM defined-term from SpecificCharacterSet to
// the golang.org/x/text/encoding/htmlindex name of the decoder it selects.
// "" means 7-bit ASCII / UTF-8 passthrough. Cf PS3.2 D.6.2.
var htmlEncodingNames = map[string]string{
	"":                "",
	"ISO 2022 IR 6":   "",
	"ISO_IR 100":      "",
	"ISO 2022 IR 100": "",
	"ISO_IR 13":       "shift_jis",
	"ISO 2022 IR 13":  "shift_jis",
	"ISO_IR 101":      "iso-8859-2",
	"ISO 2022 IR 101": "iso-8859-2",
	"ISO_IR 109":      "iso-8859-3",
	"ISO 2022 IR 109": "iso-8859-3",
	"ISO_IR 110":      "iso-8859-4",
	"ISO 2022 IR 110": "iso-8859-4",
	"ISO_IR 126":      "iso-ir-126",
	"ISO 2022 IR 126": "iso-ir-126",
	"ISO_IR 127":      "iso-ir-127",
	"ISO 2022 IR 127": "iso-ir-127",
	"ISO_IR 138":      "iso-ir-138",
	"ISO 2022 IR 138": "iso-ir-138",
	"ISO_IR 144":      "iso-ir-144",
	"ISO 2022 IR 144": "iso-ir-144",
	"ISO_IR 148":      "iso-ir-148",
	"ISO 2022 IR 148": "iso-ir-148",
	"ISO 2022 IR 149": "euc-kr",
	"ISO 2022 IR 159": "iso-2022-jp",
	"ISO_IR 166":      "iso-ir-166",
	"ISO 2022 IR 166": "iso-ir-166",
	"ISO 2022 IR 87":  "iso-2022-jp",
}

func decoderFor(name string) (*encoding.Decoder, *dcmerr.Error) {
	htmlName, known := htmlEncodingNames[name]
	if !known {
		dicomlog.Warningf("dicom: unknown SpecificCharacterSet term %q, assuming UTF-8", name)
		return nil, nil
	}
	if htmlName == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(htmlName)
	if err != nil {
		return nil, dcmerr.Wrap(errors.WithMessage(err, "htmlindex.Get"), dcmerr.INVALID,
			"dicom: unsupported character set", "%s (%s)", name, htmlName)
	}
	return enc.NewDecoder(), nil
}

// CodingSystemFromSpecificCharacterSet builds a dicomio.CodingSystem from
// the (possibly multi-valued) string stored in a SpecificCharacterSet
// element. One value selects the same decoder for all three PN component
// slots; two values assign {primary, secondary, secondary}; three assign
// one decoder per slot, per PS3.5 6.1.2.1 as implemented by pydicom's
// charset handling.
func CodingSystemFromSpecificCharacterSet(values []string) (dicomio.CodingSystem, *dcmerr.Error) {
	var decoders []*encoding.Decoder
	for _, name := range values {
		d, err := decoderFor(name)
		if err != nil {
			return dicomio.CodingSystem{}, err
		}
		decoders = append(decoders, d)
	}
	switch len(decoders) {
	case 0:
		return dicomio.CodingSystem{}, nil
	case 1:
		return dicomio.CodingSystem{Alphabetic: decoders[0], Ideographic: decoders[0], Phonetic: decoders[0]}, nil
	case 2:
		return dicomio.CodingSystem{Alphabetic: decoders[0], Ideographic: decoders[1], Phonetic: decoders[1]}, nil
	default:
		return dicomio.CodingSystem{Alphabetic: decoders[0], Ideographic: decoders[1], Phonetic: decoders[2]}, nil
	}
}
