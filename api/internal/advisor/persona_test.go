package advisor

import (
	"errors"
	"testing"
)

func TestGetPersona(t *testing.T) {
	p, err := GetPersona(ModeBuy, "first_car_student")
	if err != nil {
		t.Fatal(err)
	}
	if p.Mode != ModeBuy || p.Label == "" || p.Description == "" {
		t.Fatalf("incomplete persona: %+v", p)
	}

	p, err = GetPersona(ModeSell, "sell_safe")
	if err != nil {
		t.Fatal(err)
	}
	if p.Mode != ModeSell {
		t.Fatalf("mode = %v", p.Mode)
	}
}

func TestGetPersonaModeSeparation(t *testing.T) {
	// 판매 테이블의 id는 구매 모드에서 보이면 안 된다 (반대도 마찬가지)
	if _, err := GetPersona(ModeBuy, "sell_fast"); !errors.Is(err, ErrPersonaNotFound) {
		t.Fatalf("want ErrPersonaNotFound, got %v", err)
	}
	if _, err := GetPersona(ModeSell, "enthusiast"); !errors.Is(err, ErrPersonaNotFound) {
		t.Fatalf("want ErrPersonaNotFound, got %v", err)
	}
}

func TestGetPersonaUnknown(t *testing.T) {
	_, err := GetPersona(ModeBuy, "no_such_persona")
	if !errors.Is(err, ErrPersonaNotFound) {
		t.Fatalf("want ErrPersonaNotFound, got %v", err)
	}
}

func TestPersonasOrderStable(t *testing.T) {
	first := Personas(ModeBuy)
	if len(first) != 5 {
		t.Fatalf("buy personas = %d, want 5", len(first))
	}
	for i := 0; i < 10; i++ {
		again := Personas(ModeBuy)
		for j := range first {
			if again[j].ID != first[j].ID {
				t.Fatalf("order changed at %d: %s != %s", j, again[j].ID, first[j].ID)
			}
		}
	}

	sell := Personas(ModeSell)
	if len(sell) != 4 {
		t.Fatalf("sell personas = %d, want 4", len(sell))
	}
	for _, p := range sell {
		if p.Mode != ModeSell {
			t.Fatalf("buy persona leaked into sell list: %+v", p)
		}
	}
}
