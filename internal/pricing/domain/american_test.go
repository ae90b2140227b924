package domain

import "testing"

func TestPhi(t *testing.T) {
	assertClose(t, phi(120, 3, 4.51339343051624, 151.696096685711, 151.696096685711, 0.02, -0.03, 0.14),
		1102886677.05955, defaultPrec)
	assertClose(t, phi(125, 3, 1, 374.061664206768, 374.061664206768, 0.05, 0.03, 0.14),
		117.714544103477, defaultPrec)
}

func TestPsi(t *testing.T) {
	assertClose(t, psi(120, 3, 1, 375, 375, 300, 1, 0.05, 0.03, 0.1), 112.87159814023171, defaultPrec)
	assertClose(t, psi(125, 2, 1, 100, 100, 75, 1, 0.05, 0.03, 0.1), 1.7805459905819128, defaultPrec)
}

func TestBjerksundStensland2002(t *testing.T) {
	cases := []struct{ fs, x, t, r, b, v, want float64 }{
		{90, 100, 0.5, 0.1, 0, 0.15, 0.8099},
		{100, 100, 0.5, 0.1, 0, 0.25, 6.7661},
		{110, 100, 0.5, 0.1, 0, 0.35, 15.5137},
		{100, 90, 0.5, 0.1, 0, 0.15, 10.5400},
		{100, 110, 0.5, 0.1, 0, 0.35, 5.8374},
	}
	for _, tc := range cases {
		val, err := bjerksundStensland2002(tc.fs, tc.x, tc.t, tc.r, tc.b, tc.v)
		if err != nil {
			t.Fatalf("bjerksundStensland2002(%v, %v, ...): %v", tc.fs, tc.x, err)
		}
		assertClose(t, val.Value, tc.want, 0.001)
	}
}

func TestBjerksundStensland1993(t *testing.T) {
	cases := []struct{ fs, x, t, r, b, v, want float64 }{
		{90, 100, 0.5, 0.1, 0, 0.15, 0.8089},
		{100, 100, 0.5, 0.1, 0, 0.25, 6.757},
		{110, 100, 0.5, 0.1, 0, 0.35, 15.4998},
	}
	for _, tc := range cases {
		val, err := bjerksundStensland1993(tc.fs, tc.x, tc.t, tc.r, tc.b, tc.v)
		if err != nil {
			t.Fatalf("bjerksundStensland1993(%v, %v, ...): %v", tc.fs, tc.x, err)
		}
		assertClose(t, val.Value, tc.want, 0.001)
	}
}

func TestAmericanOption(t *testing.T) {
	cases := []struct {
		optionType OptionType
		fs, x, t, r, b, v, want, prec float64
	}{
		// puts solved through the put-call transform
		{OptionTypePut, 90, 100, 0.5, 0.1, 0, 0.15, 10.5400, 0.001},
		{OptionTypePut, 100, 100, 0.5, 0.1, 0, 0.25, 6.7661, 0.001},
		{OptionTypePut, 110, 100, 0.5, 0.1, 0, 0.35, 5.8374, 0.001},
		// spots vs published values
		{OptionTypeCall, 100, 95, 0.00273972602739726, 0.000751040922831883, 0, 0.2, 5.0, 0.01},
		{OptionTypeCall, 42, 40, 0.75, 0.04, -0.04, 0.35, 5.28, 0.01},
		{OptionTypeCall, 90, 100, 0.1, 0.10, 0, 0.15, 0.02, 0.01},
		// zero-rate symmetry
		{OptionTypeCall, 100, 100, 1, 0, 0, 0.35, 13.892, 0.001},
		{OptionTypePut, 100, 100, 1, 0, 0, 0.35, 13.892, 0.001},
		// time boundaries
		{OptionTypeCall, 100, 100, 0.00396825396825397, 0.000771332656950173, 0, 0.15, 0.3769, 0.001},
		{OptionTypePut, 100, 100, 0.00396825396825397, 0.000771332656950173, 0, 0.15, 0.3769, 0.001},
		{OptionTypeCall, 100, 100, 100, 0.042033868311581, 0, 0.15, 18.61206, 0.001},
		{OptionTypePut, 100, 100, 100, 0.042033868311581, 0, 0.15, 18.61206, 0.001},
		// strike boundaries
		{OptionTypeCall, 100, 0.01, 1, 0.00330252458693489, 0, 0.15, 99.99, 0.001},
		{OptionTypePut, 100, 0.01, 1, 0.00330252458693489, 0, 0.15, 0, 0.001},
		{OptionTypeCall, 100, 2147483248, 1, 0.00330252458693489, 0, 0.15, 0, 0.001},
		{OptionTypePut, 100, 2147483248, 1, 0.00330252458693489, 0, 0.15, 2147483148, 0.001},
		// underlying boundaries
		{OptionTypeCall, 0.01, 100, 1, 0.00330252458693489, 0, 0.15, 0, 0.001},
		{OptionTypePut, 0.01, 100, 1, 0.00330252458693489, 0, 0.15, 99.99, 0.001},
		{OptionTypeCall, 2147483248, 100, 1, 0.00330252458693489, 0, 0.15, 2147483148, 0.001},
		{OptionTypePut, 2147483248, 100, 1, 0.00330252458693489, 0, 0.15, 0, 0.001},
		// cost-of-carry boundaries
		{OptionTypeCall, 100, 100, 1, 0, -1, 0.15, 0.0, 0.001},
		{OptionTypePut, 100, 100, 1, 0, -1, 0.15, 63.2121, 0.001},
		{OptionTypeCall, 100, 100, 1, 0, 1, 0.15, 171.8282, 0.001},
		{OptionTypePut, 100, 100, 1, 0, 1, 0.15, 0.0, 0.001},
		// rate boundaries
		{OptionTypeCall, 100, 100, 1, -1, 0, 0.15, 16.25133, 0.001},
		{OptionTypePut, 100, 100, 1, -1, 0, 0.15, 16.25133, 0.001},
		{OptionTypeCall, 100, 100, 1, 1, 0, 0.15, 3.6014, 0.001},
		{OptionTypePut, 100, 100, 1, 1, 0, 0.15, 3.6014, 0.001},
		// volatility boundaries
		{OptionTypeCall, 100, 100, 1, 0.05, 0, 0.005, 0.1916, 0.001},
		{OptionTypePut, 100, 100, 1, 0.05, 0, 0.005, 0.1916, 0.001},
		{OptionTypeCall, 100, 100, 1, 0.05, 0, 1, 36.4860, 0.001},
		{OptionTypePut, 100, 100, 1, 0.05, 0, 1, 36.4860, 0.001},
	}
	for _, tc := range cases {
		val, err := americanOption(tc.optionType, tc.fs, tc.x, tc.t, tc.r, tc.b, tc.v)
		if err != nil {
			t.Fatalf("americanOption(%s, %v, %v, ...): %v", tc.optionType, tc.fs, tc.x, err)
		}
		assertClose(t, val.Value, tc.want, tc.prec)
	}
}

// With b >= r early exercise is never optimal and the European result is
// returned bit-for-bit, Greeks included.
func TestAmericanDelegatesToEuropeanWhenCarryCoversRate(t *testing.T) {
	cases := []struct{ fs, x, t, r, b, v float64 }{
		{100, 100, 1, 0.05, 0.05, 0.25},
		{100, 95, 0.5, 0.03, 0.08, 0.2},
		{90, 110, 2, 0.05, 0.05, 0.35},
	}
	for _, tc := range cases {
		amer, err := bjerksundStensland2002(tc.fs, tc.x, tc.t, tc.r, tc.b, tc.v)
		if err != nil {
			t.Fatal(err)
		}
		euro := mustGBS(t, OptionTypeCall, tc.fs, tc.x, tc.t, tc.r, tc.b, tc.v)
		if *amer != *euro {
			t.Fatalf("b >= r: american %+v differs from european %+v", amer, euro)
		}
	}
}

// The American premium dominates the European one everywhere on the grid.
func TestAmericanDominatesEuropean(t *testing.T) {
	for _, optionType := range []OptionType{OptionTypeCall, OptionTypePut} {
		for _, fs := range []float64{70, 90, 100, 110, 130} {
			for _, v := range []float64{0.1, 0.25, 0.5} {
				for _, b := range []float64{-0.05, 0, 0.04} {
					amer, err := americanOption(optionType, fs, 100, 1, 0.08, b, v)
					if err != nil {
						t.Fatal(err)
					}
					euroB := b
					euroR := 0.08
					euroFS, euroX := fs, 100.0
					euroType := optionType
					if optionType == OptionTypePut {
						// compare against the European put through the same transform
						euroFS, euroX = euroX, euroFS
						euroR, euroB = euroR-b, -b
						euroType = OptionTypeCall
					}
					euro := mustGBS(t, euroType, euroFS, euroX, 1, euroR, euroB, v)
					if amer.Value < euro.Value-1e-9 {
						t.Fatalf("%s fs=%v b=%v v=%v: american %v below european %v",
							optionType, fs, b, v, amer.Value, euro.Value)
					}
				}
			}
		}
	}
}

func TestAmericanOptionRejectsBadInputs(t *testing.T) {
	if _, err := americanOption("X", 100, 100, 1, 0.05, 0, 0.15); err == nil {
		t.Fatal("expected option type error")
	}
	if _, err := americanOption(OptionTypeCall, -5, 100, 1, 0.05, 0, 0.15); err == nil {
		t.Fatal("expected underlying range error")
	}
}
