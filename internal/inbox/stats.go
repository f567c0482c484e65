package inbox

import "context"

// uniqueSenders counts distinct non-empty emails.
func uniqueSenders(emails []string) int {
	seen := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if e == "" {
			continue
		}
		seen[e] = struct{}{}
	}
	return len(seen)
}

// CollectStats derives inbox statistics from the repository.
func CollectStats(ctx context.Context, repo Repository) (Stats, error) {
	emails, err := repo.SenderEmails(ctx)
	if err != nil {
		return Stats{}, err
	}
	total, err := repo.CountMessages(ctx)
	if err != nil {
		return Stats{}, err
	}
	unread, err := repo.CountUnread(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		UniqueSenders:  uniqueSenders(emails),
		TotalMessages:  total,
		UnreadMessages: unread,
	}, nil
}
