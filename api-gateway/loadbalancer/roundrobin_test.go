package loadbalancer

import "testing"

func TestNext_CyclesThroughServers(t *testing.T) {
	rr := NewRoundRobin([]string{"http://a:8082", "http://b:8082"})

	want := []string{"http://a:8082", "http://b:8082", "http://a:8082"}
	for i, server := range want {
		if got := rr.Next(); got != server {
			t.Errorf("Next() call %d = %q, want %q", i, got, server)
		}
	}
}

func TestNext_EmptyPool(t *testing.T) {
	rr := NewRoundRobin(nil)
	if got := rr.Next(); got != "" {
		t.Errorf("Next() = %q, want empty string for an empty pool", got)
	}
}

func TestAddAndRemoveServer(t *testing.T) {
	rr := NewRoundRobin([]string{"http://a:8082"})
	rr.AddServer("http://b:8082")

	if got := len(rr.GetServers()); got != 2 {
		t.Fatalf("servers = %d, want 2", got)
	}

	rr.Next()
	rr.Next()
	rr.RemoveServer("http://b:8082")

	servers := rr.GetServers()
	if len(servers) != 1 || servers[0] != "http://a:8082" {
		t.Fatalf("servers = %v, want just a", servers)
	}
	// index stays valid after shrinking
	if got := rr.Next(); got != "http://a:8082" {
		t.Errorf("Next() = %q after removal, want the remaining server", got)
	}
}
