package decant

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for conversion events.
var (
	SignalConverterCreated        = capitan.NewSignal("decant.converter.created", "Converter instantiated")
	SignalMarshalStart            = capitan.NewSignal("decant.marshal.start", "Marshal operation beginning")
	SignalMarshalComplete         = capitan.NewSignal("decant.marshal.complete", "Marshal operation finished")
	SignalUnmarshalStart          = capitan.NewSignal("decant.unmarshal.start", "Unmarshal operation beginning")
	SignalUnmarshalComplete       = capitan.NewSignal("decant.unmarshal.complete", "Unmarshal operation finished")
	SignalStreamMarshalComplete   = capitan.NewSignal("decant.stream.marshal.complete", "Stream marshal finished")
	SignalStreamUnmarshalComplete = capitan.NewSignal("decant.stream.unmarshal.complete", "Stream unmarshal finished")
)

// Keys for typed event data.
var (
	KeyContentType  = capitan.NewStringKey("content_type")
	KeyTypeName     = capitan.NewStringKey("type_name")
	KeySize         = capitan.NewIntKey("size")
	KeyDuration     = capitan.NewDurationKey("duration")
	KeyError        = capitan.NewErrorKey("error")
	KeyElementCount = capitan.NewIntKey("element_count")
)

// emitConverterCreated emits an event when a converter is created.
func emitConverterCreated(ctx context.Context, contentType, typeName string) {
	capitan.Emit(ctx, SignalConverterCreated,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
	)
}

// emitMarshalStart emits an event when marshal begins.
func emitMarshalStart(ctx context.Context, contentType, typeName string) {
	capitan.Emit(ctx, SignalMarshalStart,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
	)
}

// emitMarshalComplete emits an event when marshal finishes.
func emitMarshalComplete(ctx context.Context, contentType, typeName string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalMarshalComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalMarshalComplete, fields...)
	}
}

// emitUnmarshalStart emits an event when unmarshal begins.
func emitUnmarshalStart(ctx context.Context, contentType, typeName string) {
	capitan.Emit(ctx, SignalUnmarshalStart,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
	)
}

// emitUnmarshalComplete emits an event when unmarshal finishes.
func emitUnmarshalComplete(ctx context.Context, contentType, typeName string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalUnmarshalComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalUnmarshalComplete, fields...)
	}
}

// emitStreamMarshalComplete emits an event when a stream marshal drains.
func emitStreamMarshalComplete(ctx context.Context, contentType, typeName string, elements int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeyElementCount.Field(elements),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalStreamMarshalComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalStreamMarshalComplete, fields...)
	}
}

// emitStreamUnmarshalComplete emits an event when a stream unmarshal ends.
func emitStreamUnmarshalComplete(ctx context.Context, contentType, typeName string, elements int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeyElementCount.Field(elements),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalStreamUnmarshalComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalStreamUnmarshalComplete, fields...)
	}
}
