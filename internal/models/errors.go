package models

import "errors"

var (
	// ErrInsufficientData: серия короче окна или минимального числа баров. Символ пропускается.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidConfig: невалидные окна/плечо/номинал. Фатально только на старте.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidPrice: цена входа <= 0.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrInvalidStop: стоп по неправильную сторону от входа или схлопнулся после округления.
	ErrInvalidStop = errors.New("invalid stop")
	// ErrZeroQuantity: размер позиции округлился до нуля.
	ErrZeroQuantity = errors.New("zero quantity")
	// ErrInvalidCandle: нарушены OHLC-инварианты или порядок свечей.
	ErrInvalidCandle = errors.New("invalid candle")
)
