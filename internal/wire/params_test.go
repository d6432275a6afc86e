package wire

import "testing"

func TestParamsRoundTrip(t *testing.T) {
	in := Params{Mode: ModeL2, Compress: CompressOn, MaxFrameSize: 1500}
	buf := make([]byte, ParamsLen)
	if err := EncodeParams(buf, in); err != nil {
		t.Fatalf("EncodeParams: %v", err)
	}
	out, err := DecodeParams(buf)
	if err != nil {
		t.Fatalf("DecodeParams: %v", err)
	}
	if out != in {
		t.Fatalf("DecodeParams = %+v, want %+v", out, in)
	}
}

func TestEncodeParamUnit(t *testing.T) {
	p := Params{Mode: ModeL3, Compress: CompressNone, MaxFrameSize: 65535}
	dst := make([]byte, PrefixLen+ParamsLen)
	n, err := EncodeParamUnit(dst, p)
	if err != nil {
		t.Fatalf("EncodeParamUnit: %v", err)
	}
	if n != PrefixLen+ParamsLen {
		t.Fatalf("n = %d, want %d", n, PrefixLen+ParamsLen)
	}
	if DecodePrefix(dst) != 0 {
		t.Fatal("parameter unit must carry a zero-length prefix")
	}
	got, err := DecodeParams(dst[PrefixLen:])
	if err != nil {
		t.Fatalf("DecodeParams: %v", err)
	}
	if got != p {
		t.Fatalf("DecodeParams = %+v, want %+v", got, p)
	}
}

func TestInterfaceModeString(t *testing.T) {
	cases := map[InterfaceMode]string{ModeL3: "l3", ModeL2: "l2", InterfaceMode(9): "mode(9)"}
	for mode, want := range cases {
		if got := mode.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", mode, got, want)
		}
	}
}
