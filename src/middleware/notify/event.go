// Copyright 2021 The RegenProtocol Authors
// This file is part of the RegenProtocol library.
//
// The RegenProtocol library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The RegenProtocol library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the RegenProtocol library. If not, see <http://www.gnu.org/licenses/>.

package notify

const (
	// InspectionRealized fires after an inspection reaches Inspected and its
	// score is computed, before the operation commits.
	InspectionRealized = "inspection_realized"

	// ResourceInvalidated fires when a governance vote crosses the threshold
	// against a resource.
	ResourceInvalidated = "resource_invalidated"

	// UserDenied fires after the registry flips an account to denied.
	UserDenied = "user_denied"
)
