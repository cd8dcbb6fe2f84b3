package model

import "time"

// Room represents a physical dining area (sala) of the restaurant.
// A room owns zero or more tables.  Rooms are archived rather than
// deleted while they still own tables.  This struct corresponds to
// a row in the `rooms` table.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – room name shown to staff.
//  DisplayOrder – position of the room in floor-plan listings.
//  Active       – whether the room is in use (false = archived).
//  CreatedAt    – timestamp when the room was created.
//  UpdatedAt    – timestamp of last update.
type Room struct {
    ID           uint64    // rooms.id
    Name         string    // rooms.name
    DisplayOrder uint32    // rooms.display_order
    Active       bool      // rooms.active
    CreatedAt    time.Time // rooms.created_at
    UpdatedAt    time.Time // rooms.updated_at
}
