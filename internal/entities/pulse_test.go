package entities

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestFloatSeries_Value(t *testing.T) {
	tests := []struct {
		name   string
		series FloatSeries
		want   any
	}{
		{name: "正常系: nilの系列", series: nil, want: nil},
		{name: "正常系: 空の系列", series: FloatSeries{}, want: "[]"},
		{name: "正常系: 値あり", series: FloatSeries{1, 2.5}, want: "[1,2.5]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.series.Value()
			if err != nil {
				t.Fatalf("Value() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Value() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFloatSeries_Scan(t *testing.T) {
	tests := []struct {
		name    string
		src     any
		want    FloatSeries
		wantErr bool
	}{
		{name: "正常系: nil", src: nil, want: nil},
		{name: "正常系: バイト列", src: []byte("[1,2]"), want: FloatSeries{1, 2}},
		{name: "正常系: 文字列", src: "[0.5]", want: FloatSeries{0.5}},
		{name: "異常系: 不正なJSON", src: "not json", wantErr: true},
		{name: "異常系: 未対応の入力", src: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FloatSeries
			err := got.Scan(tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Scan() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) || (got == nil) != (tt.want == nil) {
				t.Fatalf("Scan() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Scan()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func validPulseCreate() *PulseCreate {
	return &PulseCreate{
		Delays:            []float64{0, 1e-10, 2e-10},
		Signal:            []float64{0.1, 0.2, 0.3},
		IntegrationTimeMS: 100,
		CreationTime:      time.Now(),
		DeviceID:          uuid.New(),
	}
}

func TestPulseCreate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *PulseCreate)
		wantErr bool
	}{
		{name: "正常系: 有効", mutate: func(p *PulseCreate) {}},
		{name: "正常系: signal_error付きで有効", mutate: func(p *PulseCreate) { p.SignalError = []float64{0, 0, 0} }},
		{name: "異常系: デバイス未指定", mutate: func(p *PulseCreate) { p.DeviceID = uuid.Nil }, wantErr: true},
		{name: "異常系: delaysなし", mutate: func(p *PulseCreate) { p.Delays = nil }, wantErr: true},
		{name: "異常系: signalの長さ不一致", mutate: func(p *PulseCreate) { p.Signal = p.Signal[:1] }, wantErr: true},
		{name: "異常系: signal_errorの長さ不一致", mutate: func(p *PulseCreate) { p.SignalError = []float64{0} }, wantErr: true},
		{name: "異常系: 負の積算時間", mutate: func(p *PulseCreate) { p.IntegrationTimeMS = -1 }, wantErr: true},
		{name: "異常系: 作成日時がゼロ値", mutate: func(p *PulseCreate) { p.CreationTime = time.Time{} }, wantErr: true},
		{
			name:    "異常系: 不正な属性",
			mutate:  func(p *PulseCreate) { p.Attributes = []Attribute{StringAttribute{Key: ""}} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPulseCreate()
			tt.mutate(p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Validate() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestPulseCreate_NewPulse(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	p := validPulseCreate()
	p.CreationTime = time.Date(2024, 1, 2, 3, 4, 5, 0, loc)

	pulse := p.NewPulse()
	if pulse.PulseID == uuid.Nil {
		t.Error("NewPulse() did not assign an id")
	}
	if pulse.CreationTime.Location() != time.UTC {
		t.Errorf("NewPulse() creation time location = %v, want UTC", pulse.CreationTime.Location())
	}
	if !pulse.CreationTime.Equal(p.CreationTime) {
		t.Errorf("NewPulse() creation time = %v, want %v", pulse.CreationTime, p.CreationTime)
	}
	if pulse.SignalError != nil {
		t.Errorf("NewPulse() signal error = %v, want nil", pulse.SignalError)
	}
}
