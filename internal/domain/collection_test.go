package domain

import "testing"

func TestCollectionAddRemoveProduct(t *testing.T) {
	c := &Collection{OwnerID: "user-1", Name: DefaultCollectionName, IsDefault: true}
	c.ID = "coll-1"
	c.InitTimestamps()

	if !c.AddProduct("prod-1") {
		t.Error("first add should report a change")
	}
	if !c.AddProduct("prod-2") {
		t.Error("second add should report a change")
	}
	if c.AddProduct("prod-1") {
		t.Error("duplicate add should be a no-op")
	}

	// Newest-first ordering.
	if len(c.ProductIDs) != 2 || c.ProductIDs[0] != "prod-2" || c.ProductIDs[1] != "prod-1" {
		t.Errorf("unexpected order: %v", c.ProductIDs)
	}

	if !c.ContainsProduct("prod-1") {
		t.Error("prod-1 should be present")
	}
	if c.ContainsProduct("prod-9") {
		t.Error("prod-9 should be absent")
	}

	if !c.RemoveProduct("prod-1") {
		t.Error("remove of present product should report a change")
	}
	if c.RemoveProduct("prod-1") {
		t.Error("remove of absent product should be a no-op")
	}
	if c.ContainsProduct("prod-1") {
		t.Error("prod-1 should be gone after remove")
	}
}
