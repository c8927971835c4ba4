package params

import "testing"

func TestCheckConfigCompatible(t *testing.T) {
	stored := *MainnetChainConfig
	have := stored
	if err := have.CheckConfigCompatible(&stored); err != nil {
		t.Fatalf("identical configs reported incompatible: %v", err)
	}
	have.SlotDuration *= 2
	if err := have.CheckConfigCompatible(&stored); err != nil {
		t.Fatalf("slot duration change should be compatible: %v", err)
	}
	have.ChainID = 99
	if err := have.CheckConfigCompatible(&stored); err == nil {
		t.Fatalf("chain id change should be incompatible")
	}
	if err := have.CheckConfigCompatible(nil); err != nil {
		t.Fatalf("fresh ledger should accept any config: %v", err)
	}
}

func TestProgramAddressesDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, a := range []string{
		SystemProgramAddress.Hex(),
		FeeScheduleProgramAddress.Hex(),
		AttestationProgramAddress.Hex(),
		TokenProgramAddress.Hex(),
	} {
		if seen[a] {
			t.Fatalf("duplicate program address %s", a)
		}
		seen[a] = true
	}
}
