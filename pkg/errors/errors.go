// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// パイプラインの各ステージ（検証・設定・学習）ごとに型付きのエラーを返し、
// cockroachdb/errors によるスタックトレースを付与します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("iziml-warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler は警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// DataConversionWarning はデータの型が暗黙的に変換・除外された場合に発生する警告です。
type DataConversionWarning struct {
	FromType string
	ToType   string
	Reason   string
}

func (w *DataConversionWarning) Error() string {
	return fmt.Sprintf("data converted from %s to %s. Reason: %s", w.FromType, w.ToType, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DataConversionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("from_type", w.FromType).
		Str("to_type", w.ToType).
		Str("reason", w.Reason).
		Str("type", "DataConversionWarning")
}

// NewDataConversionWarning は新しいDataConversionWarningを作成します。
func NewDataConversionWarning(from, to, reason string) *DataConversionWarning {
	return &DataConversionWarning{FromType: from, ToType: to, Reason: reason}
}

// UndefinedMetricWarning は評価指標が数学的に定義できず、既定値で置き換えた場合の警告です。
// 例えば、目的変数が定数のときのR²（全変動が0）など。
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64 // この条件で返される値
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %f due to %s.", w.Metric, w.Result, w.Condition)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning は新しいUndefinedMetricWarningを作成します。
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// ===========================================================================
//
//	パイプラインのエラー分類
//
// ===========================================================================

// Kind はパイプラインエラーの種別です。
type Kind string

const (
	// KindNoNumericColumns は数値列が1つも残らなかったことを示します。
	KindNoNumericColumns Kind = "NoNumericColumns"
	// KindInsufficientColumns は数値列が2列未満（特徴量1+目的変数1に満たない）であることを示します。
	KindInsufficientColumns Kind = "InsufficientColumns"
	// KindEmptyDataset は欠損値の除去後に行が残らなかったことを示します。
	KindEmptyDataset Kind = "EmptyDataset"
	// KindInvalidConfig は設定値が許容範囲外であることを示します。
	KindInvalidConfig Kind = "InvalidConfig"
	// KindFitError は推定器がデータを受け付けなかったことを示します。
	KindFitError Kind = "FitError"
)

// センチネルエラー。errors.Is で種別を判定するために使います。
var (
	ErrNoNumericColumns    = errors.New("no numeric columns")
	ErrInsufficientColumns = errors.New("insufficient numeric columns")
	ErrEmptyDataset        = errors.New("no rows left after dropping missing values")
	ErrInvalidConfig       = errors.New("invalid config")
	ErrFitError            = errors.New("fit error")
)

func sentinel(k Kind) error {
	switch k {
	case KindNoNumericColumns:
		return ErrNoNumericColumns
	case KindInsufficientColumns:
		return ErrInsufficientColumns
	case KindEmptyDataset:
		return ErrEmptyDataset
	case KindInvalidConfig:
		return ErrInvalidConfig
	case KindFitError:
		return ErrFitError
	}
	return nil
}

// ValidationError はデータセットの検証に失敗した場合のエラーです。
type ValidationError struct {
	Kind    Kind
	Columns int // 残った数値列の数
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("iziml: validation failed (%s): %s", e.Kind, e.Reason)
}

// Is はセンチネルエラーとの比較を可能にします。
func (e *ValidationError) Is(target error) bool {
	return target == sentinel(e.Kind)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("kind", string(e.Kind)).
		Int("columns", e.Columns).
		Str("reason", e.Reason).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(kind Kind, columns int, reason string) error {
	return errors.WithStack(&ValidationError{Kind: kind, Columns: columns, Reason: reason})
}

// ConfigError はモデル設定の検証に失敗した場合のエラーです。
type ConfigError struct {
	Kind   Kind
	Field  string
	Reason string
	Value  interface{}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("iziml: %s for parameter '%s': %s (got: %v)", e.Kind, e.Field, e.Reason, e.Value)
}

// Is はセンチネルエラーとの比較を可能にします。
func (e *ConfigError) Is(target error) bool {
	return target == sentinel(e.Kind)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ConfigError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("kind", string(e.Kind)).
		Str("field", e.Field).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ConfigError")
}

// NewInvalidConfigError は新しいInvalidConfig種別のConfigErrorを作成します。
func NewInvalidConfigError(field, reason string, value interface{}) error {
	return errors.WithStack(&ConfigError{Kind: KindInvalidConfig, Field: field, Reason: reason, Value: value})
}

// TrainingError は学習（fit）の失敗を表します。リトライはされません。
type TrainingError struct {
	Kind  Kind
	Model string
	Err   error
}

func (e *TrainingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("iziml: %s: %s: %v", e.Model, e.Kind, e.Err)
	}
	return fmt.Sprintf("iziml: %s: %s", e.Model, e.Kind)
}

func (e *TrainingError) Unwrap() error {
	return e.Err
}

// Is はセンチネルエラーとの比較を可能にします。
func (e *TrainingError) Is(target error) bool {
	return target == sentinel(e.Kind)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *TrainingError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("kind", string(e.Kind)).
		Str("model_name", e.Model).
		Str("type", "TrainingError")
	if e.Err != nil {
		event.Str("cause", e.Err.Error())
	}
}

// NewFitError は推定器の失敗をFitErrorとしてラップします。
func NewFitError(modelName string, err error) error {
	return errors.WithStack(&TrainingError{Kind: KindFitError, Model: modelName, Err: err})
}

// ===========================================================================
//
//	推定器レベルのエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で `Predict` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("iziml: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("iziml: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, e.axisName(), e.Expected, e.Got)
}

func (e *DimensionError) axisName() string {
	if e.Axis == 0 {
		return "rows"
	}
	return "features"
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", e.axisName()).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValueError は引数の値が不適切な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("iziml: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ModelError は推定器内部の一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("iziml: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("iziml: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// KindOf はエラーチェーンからパイプラインエラーの種別を取り出します。
// 該当しない場合は空文字列を返します。
func KindOf(err error) Kind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	var te *TrainingError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は特異行列の場合のエラーです。
	ErrSingularMatrix = New("singular matrix")
)
