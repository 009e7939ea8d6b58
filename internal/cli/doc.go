// Package cli implements the interactive diner shell.
//
// The shell reads one command per line; commands that need more input
// (sign-up, sign-in, checkout) prompt for it. Type "help" for the list.
//
//	menu [category]       list categories or the meals of one category
//	meal <id>             show a meal with its ingredients
//	add <mealId> [qty]    add to the cart, merging with a pending line
//	order <mealId> [qty]  add a separate cart line
//	cart | history        pending or submitted orders
//	qty <id> <n>          change the quantity of a pending line
//	remove <id> | clear   delete one or all orders
//	submit [id...]        submit the given lines, or every pending one
//	checkout              enter card details and submit the cart
//	signup | login | logout | whoami | passwd | switch <id>
//	theme [light|dark] | stats | help | exit
package cli
