package service

import (
	"errors"
	"testing"

	"airclass/internal/model"
)

func TestRegisterStartsUnknown(t *testing.T) {
	registry := NewClientRegistry(testLogger())
	c := registry.Register(&fakeSender{})

	if c.Role() != model.RoleUnknown {
		t.Fatalf("fresh connection role = %v, want UNKNOWN", c.Role())
	}
	if c.ID() != "" {
		t.Fatalf("fresh connection must have no id, got %q", c.ID())
	}
}

func TestIdentifyRoleGeneratesMonotonicIDs(t *testing.T) {
	registry := NewClientRegistry(testLogger())

	a := registry.Register(&fakeSender{})
	if err := registry.IdentifyRole(a, model.RoleDesktop, ""); err != nil {
		t.Fatalf("identify: %v", err)
	}
	if a.ID() != "desktop-1" {
		t.Fatalf("generated id = %q, want desktop-1", a.ID())
	}

	// The counter is process-wide and never reused, even after the
	// earlier connection disconnects.
	registry.Unregister(a)

	b := registry.Register(&fakeSender{})
	if err := registry.IdentifyRole(b, model.RoleHardware, ""); err != nil {
		t.Fatalf("identify: %v", err)
	}
	if b.ID() != "hardware-2" {
		t.Fatalf("generated id = %q, want hardware-2", b.ID())
	}
}

func TestIdentifyRoleHonorsSuppliedID(t *testing.T) {
	registry := NewClientRegistry(testLogger())
	c := registry.Register(&fakeSender{})

	if err := registry.IdentifyRole(c, model.RoleDesktop, "d1"); err != nil {
		t.Fatalf("identify: %v", err)
	}
	if c.ID() != "d1" {
		t.Fatalf("id = %q, want d1", c.ID())
	}
	if got, ok := registry.Lookup("d1"); !ok || got != c {
		t.Fatal("identified client must be resolvable by id")
	}
}

func TestReIdentificationRejected(t *testing.T) {
	registry := NewClientRegistry(testLogger())
	c := registry.Register(&fakeSender{})
	registry.IdentifyRole(c, model.RoleMobile, "m1")

	err := registry.IdentifyRole(c, model.RoleDesktop, "d1")
	if !errors.Is(err, model.ErrRoleAlreadySet) {
		t.Fatalf("expected ErrRoleAlreadySet, got %v", err)
	}
	if c.Role() != model.RoleMobile || c.ID() != "m1" {
		t.Fatalf("failed re-identification must not mutate the client: %v %q", c.Role(), c.ID())
	}
}

func TestUnregisterRemovesMembershipBeforeDescriptor(t *testing.T) {
	log := testLogger()
	registry := NewClientRegistry(log)
	rooms := NewRoomService(log)
	registry.SetRoomMembership(rooms)

	c := registry.Register(&fakeSender{})
	registry.IdentifyRole(c, model.RoleMobile, "m1")
	rooms.JoinRoom("room-1", "m1")

	registry.Unregister(c)

	if rooms.RoomExists("room-1") {
		t.Fatal("room emptied by the disconnect must be deleted")
	}
	if _, ok := registry.Lookup("m1"); ok {
		t.Fatal("descriptor must be gone after unregister")
	}
}

func TestResolveSkipsDepartedClients(t *testing.T) {
	registry := NewClientRegistry(testLogger())
	a := registry.Register(&fakeSender{})
	registry.IdentifyRole(a, model.RoleDesktop, "d1")
	b := registry.Register(&fakeSender{})
	registry.IdentifyRole(b, model.RoleMobile, "m1")

	registry.Unregister(b)

	clients := registry.Resolve([]string{"d1", "m1"})
	if len(clients) != 1 || clients[0] != a {
		t.Fatalf("expected only the live client, got %d", len(clients))
	}
}
