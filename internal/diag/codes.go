package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Колонки: приведение значений фиксированной ширины
	ColInfo     Code = 1000
	ColCoercion Code = 1001
	ColOverflow Code = 1002

	// Построчные многотиповые файлы
	RecInfo              Code = 2000
	RecUnknownRecordType Code = 2001
	RecTrailingContent   Code = 2002
	RecEmptyFile         Code = 2003
	RecMissingKey        Code = 2004

	// Блочные файлы
	BlkInfo              Code = 3000
	BlkUnterminatedBlock Code = 3001
	BlkUnknownSubRecord  Code = 3002
	BlkOrphanSubRecord   Code = 3003

	// Бинарные файлы фиксированного шага
	BinInfo           Code = 4000
	BinStrideMismatch Code = 4001
	BinNonFiniteValue Code = 4002
	BinUnusedSlot     Code = 4003

	// Реестр форматов
	RegInfo           Code = 5000
	RegNoParser       Code = 5001
	RegAmbiguousMatch Code = 5002

	// Перекрёстные ссылки
	XrfInfo                 Code = 6000
	XrfReferentialIntegrity Code = 6001
	XrfCycleDetected        Code = 6002
	XrfDuplicateKey         Code = 6003
	XrfRangeViolation       Code = 6004

	IOInfo          Code = 7000
	IOLoadFileError Code = 7001
	IOCacheError    Code = 7002

	ObsInfo    Code = 8000
	ObsTimings Code = 8001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:             "Unknown error",
		ColInfo:                 "Column information",
		ColCoercion:             "Field value cannot be coerced to its declared kind",
		ColOverflow:             "Value does not fit the declared field width",
		RecInfo:                 "Record information",
		RecUnknownRecordType:    "Unknown record type",
		RecTrailingContent:      "Content after end marker ignored",
		RecEmptyFile:            "File contains no records",
		RecMissingKey:           "Record has no key and was skipped",
		BlkInfo:                 "Block information",
		BlkUnterminatedBlock:    "Block is not terminated",
		BlkUnknownSubRecord:     "Unknown sub-record inside block",
		BlkOrphanSubRecord:      "Sub-record has no matching leading record",
		BinInfo:                 "Binary information",
		BinStrideMismatch:       "File length is not a multiple of the record stride",
		BinNonFiniteValue:       "Non-finite floating point value",
		BinUnusedSlot:           "Unused registry slot",
		RegInfo:                 "Registry information",
		RegNoParser:             "No parser registered for file",
		RegAmbiguousMatch:       "Several formats match the file name",
		XrfInfo:                 "Cross-reference information",
		XrfReferentialIntegrity: "Reference does not resolve",
		XrfCycleDetected:        "Cascade cycle detected",
		XrfDuplicateKey:         "Duplicate key",
		XrfRangeViolation:       "Declared range is inverted",
		IOInfo:                  "I/O information",
		IOLoadFileError:         "I/O load file error",
		IOCacheError:            "Cache read/write error",
		ObsInfo:                 "Observability information",
		ObsTimings:              "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("COL%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("REC%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("BLK%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("BIN%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("REG%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("XRF%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 8000 && ic < 9000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
