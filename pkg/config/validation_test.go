package config

import "testing"

func TestDefaultScanOptionsValid(t *testing.T) {
	if err := DefaultScanOptions().Validate(); err != nil {
		t.Errorf("DefaultScanOptions().Validate() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ScanOptions)
		wantErr bool
	}{
		{
			name:    "zero workers",
			mutate:  func(o *ScanOptions) { o.MaxScanGoRoutines = 0 },
			wantErr: true,
		},
		{
			name:    "zero rule timeout",
			mutate:  func(o *ScanOptions) { o.RuleTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "zero candidate length",
			mutate:  func(o *ScanOptions) { o.MinCandidateLength = 0 },
			wantErr: true,
		},
		{
			name:    "negative entropy threshold",
			mutate:  func(o *ScanOptions) { o.EntropyThreshold = -1 },
			wantErr: true,
		},
		{
			name:    "zero upload size",
			mutate:  func(o *ScanOptions) { o.MaxUploadSize = 0 },
			wantErr: true,
		},
		{
			name:    "defaults pass",
			mutate:  func(o *ScanOptions) {},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultScanOptions()
			tt.mutate(&opts)
			if err := opts.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
