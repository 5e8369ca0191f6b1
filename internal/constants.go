/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

const (
	UserAgent = "MontrealBot/1.2.0 (+https://github.com/ConfusedSammie/MontrealBot)"
)
